package config

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail/v2"
)

// SendMail sends an HTML email via the configured SMTP relay. Callers treat
// failures as non-fatal; workflow transitions never depend on delivery.
func SendMail(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	if App == nil || App.SMTPHost == "" || App.SMTPFrom == "" {
		return fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}

	m := mail.NewMessage()
	m.SetHeader("From", App.SMTPFrom)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := mail.NewDialer(App.SMTPHost, App.SMTPPort, App.SMTPUser, App.SMTPPass)

	// Mandatory STARTTLS on port 587 (works with Gmail/Office365).
	d.StartTLSPolicy = mail.MandatoryStartTLS

	// ServerName must match the relay hostname, e.g. "smtp.gmail.com".
	// SMTP_SKIP_TLS_VERIFY=1 skips cert verification (dev only).
	d.TLSConfig = &tls.Config{
		ServerName:         App.SMTPHost,
		InsecureSkipVerify: App.SMTPSkipTLSVerify,
	}

	return d.DialAndSend(m)
}
