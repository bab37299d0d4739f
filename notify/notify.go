// Package notify tells administrators about new time-off requests by email.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/warp/timesheet-engine/config"
	"github.com/warp/timesheet-engine/timeoff"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// =============================================================================
// REQUEST NOTIFIER (timeoff.Notifier interface)
// =============================================================================

// RequestNotifier formats new-request notices and hands them to a Sender.
type RequestNotifier struct {
	Sender Sender
	To     []string
}

func NewRequestNotifier(sender Sender, to []string) *RequestNotifier {
	return &RequestNotifier{Sender: sender, To: to}
}

func (n *RequestNotifier) RequestCreated(ctx context.Context, notice timeoff.Notice) error {
	if len(n.To) == 0 {
		return nil
	}
	return n.Sender.Send(ctx, Message{
		To:      n.To,
		Subject: Subject(notice),
		Body:    Body(notice),
	})
}

func Subject(n timeoff.Notice) string {
	return fmt.Sprintf("Time off request: %s (%s)", n.EmployeeName, n.Category.Note())
}

func Body(n timeoff.Notice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s has requested time off.\r\n\r\n", n.EmployeeName)
	fmt.Fprintf(&b, "Type: %s\r\n", n.Category.Note())
	if n.FromDate.Equal(n.ToDate) {
		fmt.Fprintf(&b, "Date: %s\r\n", n.FromDate)
	} else {
		fmt.Fprintf(&b, "Dates: %s to %s\r\n", n.FromDate, n.ToDate)
	}
	fmt.Fprintf(&b, "Request: %s\r\n\r\n", n.RequestID)
	b.WriteString("Approve or reject it from the time-off requests list.\r\n")
	return b.String()
}

// =============================================================================
// SMTP SENDER
// =============================================================================

// SMTPSender sends plain-text mail through one SMTP server.
type SMTPSender struct {
	cfg config.NotifyConfig
}

func NewSMTPSender(cfg config.NotifyConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("no recipients specified")
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}
	headers := []string{
		"From: " + headerValue(from),
		"To: " + headerValue(strings.Join(msg.To, ", ")),
		"Subject: " + mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
	}
	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + msg.Body

	client, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, to := range msg.To {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", to, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to initiate data transfer: %w", err)
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data transfer: %w", err)
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP session: %w", err)
	}
	return nil
}

// headerValue folds CR and LF into spaces so a value cannot start a new header.
func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

func (s *SMTPSender) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(s.cfg.SMTPHost, strconv.Itoa(s.cfg.SMTPPort))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if s.cfg.StartTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.SMTPHost}); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to start TLS: %w", err)
		}
	}
	return client, nil
}
