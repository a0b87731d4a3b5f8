package notify

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"github.com/quickdesk/helpdesk/internal/core/ports"
)

// Mailer sends a single notification email.
type Mailer interface {
	Send(to ports.Recipient, subject, htmlBody, plainBody string) error
}

// SMTPConfig holds the mail transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers mail over SMTP with alternative HTML and plain bodies.
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) Send(to ports.Recipient, subject, htmlBody, plainBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetAddressHeader("To", to.Email, to.Name)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plainBody)
	msg.AddAlternative("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to.Email, err)
	}
	return nil
}

// renderBodies builds the subject line and both bodies for a notification.
func renderBodies(n ports.Notification) (subject, htmlBody, plainBody string) {
	var headline string
	switch n.Kind {
	case ports.NotifyTicketCreated:
		headline = "Your ticket has been created"
	case ports.NotifyCommentAdded:
		headline = "New comment on your ticket"
	default:
		headline = "Your ticket has been updated"
	}

	subject = fmt.Sprintf("[QuickDesk] %s: %s", headline, n.Subject)

	// Ticket subject and summary carry user-written text and must not be
	// interpreted as markup.
	htmlBody = fmt.Sprintf(`
		<html>
		<body>
			<h2>%s</h2>
			<p><strong>Ticket:</strong> %s</p>
			<p><strong>Status:</strong> %s</p>
			<p>%s</p>
		</body>
		</html>
	`, headline, html.EscapeString(n.Subject), html.EscapeString(n.Status), html.EscapeString(n.Summary))

	plainBody = fmt.Sprintf(`%s

Ticket: %s
Status: %s

%s
`, headline, n.Subject, n.Status, n.Summary)

	return subject, htmlBody, plainBody
}
