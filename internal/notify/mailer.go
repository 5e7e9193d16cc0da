// Package notify delivers change reports by email. It renders a plain-text
// and an HTML body and sends them as a multipart/alternative message over
// SMTP. The detection core has no opinion on any of this; notify only
// consumes finished reports.
package notify

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/hyperifyio/sitewatch/internal/diff"
)

// Change pairs a monitored URL with the report produced for it in one pass.
type Change struct {
	URL    string
	Report *diff.Report
}

// Mailer sends one notification email per monitoring pass.
type Mailer struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Recipients []string

	Logger zerolog.Logger
}

// NewMailerFromEnv builds a Mailer from SMTP_USER, SMTP_PASS and MAIL_TO
// (comma-separated), with SMTP_HOST and SMTP_PORT optional. Missing
// credentials or recipients are a configuration error.
func NewMailerFromEnv(logger zerolog.Logger) (*Mailer, error) {
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	if user == "" || pass == "" {
		return nil, fmt.Errorf("SMTP_USER and SMTP_PASS must be set")
	}

	var recipients []string
	for _, addr := range strings.Split(os.Getenv("MAIL_TO"), ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("MAIL_TO must be set")
	}

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", p, err)
		}
		port = v
	}

	return &Mailer{
		Host:       host,
		Port:       port,
		Username:   user,
		Password:   pass,
		Recipients: recipients,
		Logger:     logger,
	}, nil
}

// Send delivers one email summarizing all changes from a pass.
func (m *Mailer) Send(changes []Change) error {
	msg := mail.NewMsg()
	if err := msg.From(m.Username); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.Recipients...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(fmt.Sprintf("Site change report: %d site(s) updated", len(changes)))

	now := time.Now()
	msg.SetBodyString(mail.TypeTextPlain, renderText(changes, now))
	html, err := renderHTML(changes, now)
	if err != nil {
		return fmt.Errorf("render html body: %w", err)
	}
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	client, err := mail.NewClient(m.Host,
		mail.WithPort(m.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.Username),
		mail.WithPassword(m.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	m.Logger.Info().Int("recipients", len(m.Recipients)).Int("changes", len(changes)).
		Msg("notification email sent")
	return nil
}
