package timesheet

// Overlaps reports whether the shift [clockIn, clockOut) shares any time with
// the window. The shift uses the same next-day rule as DayHours, so the
// window is laid out over the day before, the shift's day and the day after.
// A window with Start == End is empty.
func (w Window) Overlaps(clockIn, clockOut *TimeOfDay) bool {
	if clockIn == nil || clockOut == nil || w.Start == w.End {
		return false
	}
	from, to := span(*clockIn, *clockOut)

	length := int(w.End) - int(w.Start)
	if length < 0 {
		length += secondsPerDay
	}
	for day := -1; day <= 1; day++ {
		segStart := day*secondsPerDay + int(w.Start)
		segEnd := segStart + length
		if max(from, segStart) < min(to, segEnd) {
			return true
		}
	}
	return false
}

// IsGraveyard classifies a shift against the configured late-night window.
func (r Rules) IsGraveyard(clockIn, clockOut *TimeOfDay) bool {
	return r.Graveyard.Overlaps(clockIn, clockOut)
}
