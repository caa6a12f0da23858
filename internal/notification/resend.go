package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/stanstork/invite-links/internal/config"
)

// ResendSender delivers email through the Resend HTTP API using an API key.
type ResendSender struct {
	apiKey  string
	baseURL string
	from    string
	client  *http.Client
	logger  zerolog.Logger
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func NewResendSender(cfg config.EmailConfig, logger zerolog.Logger) *ResendSender {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	return &ResendSender{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: baseURL,
		from:    strings.TrimSpace(cfg.From),
		client:  &http.Client{},
		logger:  logger.With().Str("sender", "resend").Logger(),
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("resend: destination required")
	}
	if s.from == "" {
		return errors.New("resend: from required")
	}

	payload, err := json.Marshal(resendRequest{
		From:    s.from,
		To:      []string{strings.TrimSpace(msg.To)},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    textBody(msg),
	})
	if err != nil {
		return errors.Wrap(err, "resend: encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "resend: build request")
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "resend: request failed")
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var decoded resendResponse
	_ = json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := strings.TrimSpace(decoded.Message)
		if detail == "" {
			detail = strings.TrimSpace(string(raw))
		}
		return fmt.Errorf("resend: unexpected status %d: %s", resp.StatusCode, detail)
	}

	s.logger.Info().
		Str("email_id", decoded.ID).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("email sent")
	return nil
}

func (s *ResendSender) String() string {
	return "ResendSender"
}
