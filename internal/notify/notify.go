// Package notify sends candidate emails.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"aihr-backend/internal/shared/metrics"
	"aihr-backend/internal/shared/upstream"
)

const providerName = "smtp"

// Notifier delivers the interview invitation.
type Notifier interface {
	SendInterviewInvite(ctx context.Context, to, name, link string) error
}

// SMTPConfig holds the SMTP transport settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// defaultSendTimeout bounds a send when the caller's context has no deadline.
const defaultSendTimeout = 30 * time.Second

// SMTP sends mail through an authenticated SMTP server (STARTTLS on 587,
// implicit TLS on 465).
type SMTP struct {
	cfg     SMTPConfig
	timeout time.Duration
	dial    func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewSMTP constructs an SMTP notifier. Missing credentials are reported on first use.
func NewSMTP(cfg SMTPConfig) *SMTP {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTP{cfg: cfg, timeout: defaultSendTimeout, dial: (&net.Dialer{}).DialContext}
}

const inviteSubject = "Your interview with AI HR"

var inviteTemplate = template.Must(template.New("invite").Parse(`<html>
<body>
    <h2>Hello{{if .Name}}, {{.Name}}{{end}}!</h2>
    <p>You have registered for an interview with AI HR.</p>
    <p><strong>Your interview link:</strong></p>
    <p><a href="{{.Link}}" target="_blank">{{.Link}}</a></p>
    <p>Good luck!</p>
</body>
</html>`))

// RenderInvite builds the HTML invitation body.
func RenderInvite(name, link string) (string, error) {
	var buf bytes.Buffer
	if err := inviteTemplate.Execute(&buf, struct{ Name, Link string }{name, link}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SendInterviewInvite emails the interview link to the candidate.
func (s *SMTP) SendInterviewInvite(ctx context.Context, to, name, link string) (err error) {
	var missing []string
	if s.cfg.Username == "" {
		missing = append(missing, "SMTP_USERNAME")
	}
	if s.cfg.Password == "" {
		missing = append(missing, "SMTP_PASSWORD")
	}
	if len(missing) > 0 {
		return upstream.NotConfigured(providerName, missing...)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	defer func() { metrics.ObserveUpstream(providerName, "send", start, err) }()

	body, err := RenderInvite(name, link)
	if err != nil {
		return err
	}
	msg := buildMessage(s.cfg.From, to, inviteSubject, body)
	addr := s.cfg.Host + ":" + s.cfg.Port
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	if err = s.send(ctx, addr, auth, to, msg); err != nil {
		return &upstream.Error{Provider: providerName, Op: "send", Err: err}
	}
	return nil
}

// send runs one SMTP session. The context deadline (or the default timeout)
// applies to every network read and write, and cancellation aborts the session.
func (s *SMTP) send(ctx context.Context, addr string, auth smtp.Auth, to string, msg []byte) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(s.timeout)
	}
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	conn, err := s.dial(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	implicitTLS := s.cfg.Port == "465"
	if implicitTLS {
		conn = tls.Client(conn, &tls.Config{ServerName: s.cfg.Host})
	}
	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if !implicitTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
				return err
			}
		}
	}
	if err := c.Auth(auth); err != nil {
		return err
	}
	if err := c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}

var _ Notifier = (*SMTP)(nil)
