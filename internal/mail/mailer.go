// Package mail delivers finished report batches over SMTP.
package mail

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	gomail "github.com/wneessen/go-mail"
)

// Config holds SMTP transport and addressing settings.
type Config struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"-"`

	// Encryption selects the transport: "starttls" (default), "ssl", or
	// "none" for unencrypted test servers.
	Encryption string `json:"encryption"`

	// TimeoutSeconds bounds the SMTP session; 0 means 30s.
	TimeoutSeconds int `json:"timeout_seconds"`

	From string   `json:"from"`
	To   []string `json:"to"`
	Cc   []string `json:"cc"`
	Bcc  []string `json:"bcc"`
}

// Mailer sends a single message carrying every attachment for a run.
type Mailer interface {
	Send(subject, body string, attachments []string) error
}

// SMTP is the production Mailer backed by go-mail.
type SMTP struct {
	cfg Config
}

// New validates addressing config and returns an SMTP mailer.
func New(cfg Config) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp.host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp.from is required")
	}
	if len(cfg.To) == 0 {
		return nil, errors.New("smtp.to requires at least one recipient")
	}
	return &SMTP{cfg: cfg}, nil
}

// Send builds and delivers the message. All attachments travel on one
// message; a failure anywhere means nothing was delivered.
func (s *SMTP) Send(subject, body string, attachments []string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return errors.Wrapf(err, "invalid from address %s", s.cfg.From)
	}
	if err := msg.To(s.cfg.To...); err != nil {
		return errors.Wrap(err, "invalid to address")
	}
	if len(s.cfg.Cc) > 0 {
		if err := msg.Cc(s.cfg.Cc...); err != nil {
			return errors.Wrap(err, "invalid cc address")
		}
	}
	if len(s.cfg.Bcc) > 0 {
		if err := msg.Bcc(s.cfg.Bcc...); err != nil {
			return errors.Wrap(err, "invalid bcc address")
		}
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	for _, path := range attachments {
		msg.AttachFile(path)
	}

	client, err := s.client()
	if err != nil {
		return err
	}
	if err = client.DialAndSend(msg); err != nil {
		return errors.Wrapf(err, "failed to send mail via %s:%d", s.cfg.Host, s.cfg.Port)
	}
	return nil
}

func (s *SMTP) client() (*gomail.Client, error) {
	timeout := time.Duration(s.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(timeout),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}

	switch strings.ToLower(s.cfg.Encryption) {
	case "", "starttls":
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	case "ssl":
		opts = append(opts, gomail.WithSSL())
	case "none":
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	default:
		return nil, errors.Errorf("unsupported smtp.encryption=%s", s.cfg.Encryption)
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create smtp client for %s", s.cfg.Host)
	}
	return client, nil
}

// ExpandSubject substitutes {current_month} with "January 2006" style
// month-year and {date} with the ISO date, both evaluated at now.
func ExpandSubject(subject string, now time.Time) string {
	r := strings.NewReplacer(
		"{current_month}", now.Format("January 2006"),
		"{date}", now.Format("2006-01-02"),
	)
	return r.Replace(subject)
}

// BuildBody renders the plain-text message body: one line per attached
// report plus a tally of skipped ones.
func BuildBody(attached []string, noData []string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reportes generados el %s:\n\n", now.Format("2006-01-02"))
	for _, path := range attached {
		fmt.Fprintf(&b, "  - %s\n", filepath.Base(path))
	}
	if len(attached) == 0 {
		b.WriteString("  (ninguno)\n")
	}
	if len(noData) > 0 {
		fmt.Fprintf(&b, "\nSin datos (%d):\n", len(noData))
		for _, name := range noData {
			fmt.Fprintf(&b, "  - %s\n", name)
		}
	}
	return b.String()
}
