package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/jaytaylor/html2text"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/stanstork/invite-links/internal/config"
)

// Message is a single outbound email with dual HTML and plain-text bodies.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers email. Implementations must honor ctx cancellation.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

const (
	ProviderAuto   = "auto"
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
	ProviderSES    = "ses"
	ProviderLog    = "log"
)

// NewSender picks an email provider from cfg. Missing credentials are not an
// error here: the returned sender fails on first use instead.
func NewSender(cfg config.EmailConfig, logger zerolog.Logger) (Sender, error) {
	provider := cfg.Provider
	if provider == "" || provider == ProviderAuto {
		switch {
		case cfg.HasAPIKey():
			provider = ProviderResend
		case cfg.HasSMTPCredentials():
			provider = ProviderSMTP
		default:
			return &unconfiguredSender{reason: "email credentials not configured: set an API key or SMTP user/password"}, nil
		}
	}

	switch provider {
	case ProviderResend:
		if !cfg.HasAPIKey() {
			return &unconfiguredSender{reason: "email API key is not configured"}, nil
		}
		return NewResendSender(cfg, logger), nil
	case ProviderSMTP:
		if !cfg.HasSMTPCredentials() {
			return &unconfiguredSender{reason: "SMTP user/password are not configured"}, nil
		}
		sender, err := NewSMTPSender(cfg, logger)
		if err != nil {
			return nil, err
		}
		return sender, nil
	case ProviderSES:
		return NewSESSender(cfg, logger), nil
	case ProviderLog:
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", provider)
	}
}

type unconfiguredSender struct {
	reason string
}

func (s *unconfiguredSender) Send(context.Context, Message) error {
	return errors.New(s.reason)
}

func (s *unconfiguredSender) String() string {
	return "UnconfiguredSender"
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("sender", "log").Logger()}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("text", msg.Text).
		Msg("email send skipped (log provider)")
	return nil
}

func (s *LogSender) String() string {
	return "LogSender"
}

func senderName(s Sender) string {
	type named interface {
		String() string
	}
	if v, ok := s.(named); ok {
		return v.String()
	}
	return fmt.Sprintf("%T", s)
}

// textBody returns msg.Text, deriving it from the HTML part when empty.
func textBody(msg Message) string {
	if strings.TrimSpace(msg.Text) != "" || msg.HTML == "" {
		return msg.Text
	}
	plain, err := html2text.FromString(msg.HTML, html2text.Options{PrettyTables: true})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(plain)
}
