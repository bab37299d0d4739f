// Package config loads server configuration from an optional YAML file and
// TIMESHEET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/warp/timesheet-engine/timesheet"
)

// EnvPrefix is prepended to every environment override, e.g. TIMESHEET_SERVER_PORT.
const EnvPrefix = "TIMESHEET"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RulesConfig holds the accounting rules as written in the file; Rules()
// converts and validates them.
type RulesConfig struct {
	DailyRegularCap     string `mapstructure:"daily_regular_cap"`
	WeeklyRegularCap    string `mapstructure:"weekly_regular_cap"`
	GraveyardStart      string `mapstructure:"graveyard_start"`
	GraveyardEnd        string `mapstructure:"graveyard_end"`
	FullDayTimeOffHours string `mapstructure:"full_day_time_off_hours"`
}

type NotifyConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
	StartTLS bool     `mapstructure:"starttls"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.cors.origins", []string{"*"})

	v.SetDefault("database.path", "./data/timesheet.db")

	v.SetDefault("rules.daily_regular_cap", "8")
	v.SetDefault("rules.weekly_regular_cap", "40")
	v.SetDefault("rules.graveyard_start", "22:00")
	v.SetDefault("rules.graveyard_end", "06:00")
	v.SetDefault("rules.full_day_time_off_hours", "8")

	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.smtp_host", "")
	v.SetDefault("notify.smtp_port", 587)
	v.SetDefault("notify.username", "")
	v.SetDefault("notify.password", "")
	v.SetDefault("notify.from", "")
	v.SetDefault("notify.to", []string{})
	v.SetDefault("notify.starttls", true)
}

// Load reads configFile if it is non-empty, then applies environment
// overrides. Missing keys fall back to defaults.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks everything that can be checked without side effects.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if _, err := c.Rules.Rules(); err != nil {
		return err
	}
	if c.Notify.Enabled {
		if c.Notify.SMTPHost == "" || c.Notify.From == "" || len(c.Notify.To) == 0 {
			return errors.New("notify requires smtp_host, from and to when enabled")
		}
	}
	return nil
}

// Addr is the listen address for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Rules converts the configured values into engine rules.
func (r RulesConfig) Rules() (timesheet.Rules, error) {
	var rules timesheet.Rules
	var err error

	if rules.DailyRegularCap, err = parseHours("rules.daily_regular_cap", r.DailyRegularCap); err != nil {
		return timesheet.Rules{}, err
	}
	if rules.WeeklyRegularCap, err = parseHours("rules.weekly_regular_cap", r.WeeklyRegularCap); err != nil {
		return timesheet.Rules{}, err
	}
	if rules.FullDayTimeOffHours, err = parseHours("rules.full_day_time_off_hours", r.FullDayTimeOffHours); err != nil {
		return timesheet.Rules{}, err
	}
	if rules.Graveyard.Start, err = timesheet.ParseTimeOfDay(r.GraveyardStart); err != nil {
		return timesheet.Rules{}, fmt.Errorf("rules.graveyard_start: %w", err)
	}
	if rules.Graveyard.End, err = timesheet.ParseTimeOfDay(r.GraveyardEnd); err != nil {
		return timesheet.Rules{}, fmt.Errorf("rules.graveyard_end: %w", err)
	}

	if err := rules.Validate(); err != nil {
		return timesheet.Rules{}, err
	}
	return rules, nil
}

func parseHours(key, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: %q is not a number: %w", key, value, timesheet.ErrInvalidHours)
	}
	return d, nil
}
