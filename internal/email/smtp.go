// Package email delivers outbound staff email over SMTP via go-mail.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"repaircrm_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers follow-up reminder emails through the shop's SMTP server.
type Sender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSender builds a Sender from configuration. Returns nil when email
// delivery is disabled, which callers treat as "no email".
func NewSender(cfg config.EmailConfig) *Sender {
	if !cfg.GetEmailEnabled() || cfg.GetSMTPHost() == "" {
		return nil
	}
	return &Sender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

var followUpTemplate = template.Must(template.New("followup").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2937;">
	<h2>Follow-up needed</h2>
	<p>{{.CustomerName}}'s {{.DeviceType}} repair inquiry has not been contacted yet.</p>
	<p>Phone: <strong>{{.ContactNumber}}</strong></p>
	<p>Please reach out as soon as possible.</p>
</body>
</html>`))

type followUpData struct {
	CustomerName  string
	DeviceType    string
	ContactNumber string
}

// SendFollowUpReminder mails a first-contact reminder for an uncontacted lead.
// A nil receiver is the disabled state NewSender returns; sending is a no-op.
func (s *Sender) SendFollowUpReminder(ctx context.Context, to, customerName, deviceType, contactNumber string) error {
	if s == nil {
		return nil
	}

	var body bytes.Buffer
	if err := followUpTemplate.Execute(&body, followUpData{
		CustomerName:  customerName,
		DeviceType:    deviceType,
		ContactNumber: contactNumber,
	}); err != nil {
		return fmt.Errorf("render follow-up email: %w", err)
	}

	subject := "Follow-up needed: " + customerName
	return s.send(ctx, to, subject, body.String())
}

func (s *Sender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
