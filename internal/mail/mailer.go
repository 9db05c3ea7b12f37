// README: SMTP mailer; sends are fire-and-forget so callers never block on email.
package mail

import (
	"fmt"
	"log/slog"
	"net/smtp"
)

type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	log      *slog.Logger
}

func NewMailer(host string, port int, username, password, from, fromName string, log *slog.Logger) *Mailer {
	if log == nil {
		log = slog.Default()
	}
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
		log:      log,
	}
}

// Enabled reports whether an SMTP host was configured; a disabled mailer
// drops everything silently.
func (m *Mailer) Enabled() bool { return m.host != "" }

// Send queues the message on a goroutine. Delivery failures are logged, not
// returned: order flow must never stall on a mail server.
func (m *Mailer) Send(to, subject, body string) {
	if !m.Enabled() || to == "" {
		return
	}
	go func() {
		if err := m.send(to, subject, body); err != nil {
			m.log.Warn("email send failed", "to", to, "subject", subject, "error", err)
		}
	}()
}

func (m *Mailer) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s\r\n",
		m.fromName, m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}
