package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/stanstork/invite-links/internal/config"
)

// SMTPSender delivers email through an SMTP relay using user/password auth.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   zerolog.Logger
}

func NewSMTPSender(cfg config.EmailConfig, logger zerolog.Logger) (*SMTPSender, error) {
	host := strings.TrimSpace(cfg.SMTPHost)
	if host == "" {
		return nil, fmt.Errorf("smtp_host is required for smtp provider")
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	// From falls back to the authenticated user.
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = strings.TrimSpace(cfg.Username)
	}

	return &SMTPSender{
		host:     host,
		port:     port,
		username: strings.TrimSpace(cfg.Username),
		password: cfg.Password,
		from:     from,
		logger:   logger.With().Str("sender", "smtp").Logger(),
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	fromAddr, err := mail.ParseAddress(s.from)
	if err != nil {
		return errors.Wrap(err, "smtp: invalid from address")
	}
	toAddr, err := mail.ParseAddress(msg.To)
	if err != nil {
		return errors.Wrap(err, "smtp: invalid to address")
	}

	headers, body := buildMessage(fromAddr.String(), toAddr.String(), msg.Subject, textBody(msg), msg.HTML)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrap(err, "smtp: dial failed")
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return errors.Wrap(err, "smtp: new client failed")
	}
	defer client.Quit()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return errors.Wrap(err, "smtp: starttls failed")
		}
	}
	if s.username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return errors.Wrap(err, "smtp: auth failed")
		}
	}
	if err := client.Mail(fromAddr.Address); err != nil {
		return errors.Wrap(err, "smtp: mail from failed")
	}
	if err := client.Rcpt(toAddr.Address); err != nil {
		return errors.Wrap(err, "smtp: rcpt to failed")
	}

	w, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "smtp: open data")
	}
	if _, err := w.Write([]byte(headers + "\r\n" + body)); err != nil {
		_ = w.Close()
		return errors.Wrap(err, "smtp: write data")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "smtp: close data")
	}

	s.logger.Info().
		Str("to", toAddr.Address).
		Str("subject", msg.Subject).
		Msg("email sent")
	return nil
}

func (s *SMTPSender) String() string {
	return fmt.Sprintf("SMTPSender(%s:%d)", s.host, s.port)
}

// buildMessage renders RFC 5322 headers and a body. The body is
// multipart/alternative when an HTML part is present.
func buildMessage(from, to, subject, text, html string) (string, string) {
	headers := strings.Builder{}
	fmt.Fprintf(&headers, "From: %s\r\n", from)
	fmt.Fprintf(&headers, "To: %s\r\n", to)
	fmt.Fprintf(&headers, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	headers.WriteString("MIME-Version: 1.0\r\n")

	if html == "" {
		headers.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		return headers.String(), text
	}

	boundary := fmt.Sprintf("alt-%d", time.Now().UnixNano())
	fmt.Fprintf(&headers, "Content-Type: multipart/alternative; boundary=%s\r\n", boundary)

	body := strings.Builder{}
	body.WriteString("--" + boundary + "\r\n")
	body.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	body.WriteString(text + "\r\n")
	body.WriteString("--" + boundary + "\r\n")
	body.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	body.WriteString(html + "\r\n")
	body.WriteString("--" + boundary + "--\r\n")
	return headers.String(), body.String()
}
