// Package notification records yes/no responses to links and emails the
// link's creator about them.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stanstork/invite-links/internal/links"
	"github.com/stanstork/invite-links/internal/models"
)

const (
	defaultSendTimeout  = 10 * time.Second
	confirmationMessage = "Notification sent successfully"
)

// ResponseRequest is one response event for a link.
type ResponseRequest struct {
	LinkID      string
	Response    string
	NotifyEmail string
	NotifyName  string
}

type Result struct {
	Message string
}

type Service interface {
	RecordResponse(ctx context.Context, req ResponseRequest) (Result, error)
}

type Option func(*service)

// WithSendTimeout bounds each email delivery attempt.
func WithSendTimeout(d time.Duration) Option {
	return func(s *service) {
		if d > 0 {
			s.sendTimeout = d
		}
	}
}

// WithLocation sets the timezone of the timestamp shown in emails.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type service struct {
	links       links.Service
	sender      Sender
	logger      zerolog.Logger
	sendTimeout time.Duration
	location    *time.Location
	now         func() time.Time

	// link ids with a delivery in progress
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewService(linkService links.Service, sender Sender, logger zerolog.Logger, opts ...Option) Service {
	s := &service{
		links:       linkService,
		sender:      sender,
		logger:      logger.With().Str("component", "response_notifier").Logger(),
		sendTimeout: defaultSendTimeout,
		location:    time.UTC,
		now:         time.Now,
		inFlight:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) RecordResponse(ctx context.Context, req ResponseRequest) (Result, error) {
	linkID := strings.TrimSpace(req.LinkID)
	notifyEmail := strings.TrimSpace(req.NotifyEmail)
	notifyName := strings.TrimSpace(req.NotifyName)

	switch {
	case linkID == "":
		return Result{}, models.NewValidationError("linkId", "link id is required")
	case req.Response == "":
		return Result{}, models.NewValidationError("response", "response is required")
	case notifyEmail == "":
		return Result{}, models.NewValidationError("email", "email is required")
	case notifyName == "":
		return Result{}, models.NewValidationError("name", "name is required")
	}
	response, ok := models.ParseResponse(req.Response)
	if !ok {
		return Result{}, models.NewValidationError("response", `response must be "yes" or "no"`)
	}

	// Answered is terminal, and only one answer per link may be in delivery.
	if !s.acquire(linkID) {
		return Result{}, models.ErrAlreadyAnswered
	}
	defer s.release(linkID)
	if link, err := s.links.Lookup(ctx, linkID); err == nil && link.IsAnswered() {
		return Result{}, models.ErrAlreadyAnswered
	}

	content, err := Compose(response, notifyName, s.now().In(s.location))
	if err != nil {
		return Result{}, err
	}

	if err := s.deliver(ctx, Message{
		To:      notifyEmail,
		Subject: content.Subject,
		HTML:    content.HTML,
		Text:    content.Text,
	}); err != nil {
		s.logger.Error().
			Err(err).
			Str("link_id", linkID).
			Str("sender", senderName(s.sender)).
			Msg("failed to deliver notification")
		return Result{}, &models.DeliveryError{Err: err}
	}

	// The email is already out; bookkeeping failures do not fail the request.
	if _, err := s.links.MarkResponded(ctx, linkID, response); err != nil {
		s.logger.Warn().
			Err(err).
			Str("link_id", linkID).
			Msg("notification sent but response not recorded")
	} else {
		s.logger.Info().
			Str("link_id", linkID).
			Str("response", string(response)).
			Msg("response recorded")
	}

	return Result{Message: confirmationMessage}, nil
}

func (s *service) deliver(ctx context.Context, msg Message) error {
	if s.sender == nil {
		return errors.New("email sender not configured")
	}
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	// Senders that ignore ctx must still not hold the request past the timeout.
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.sender.Send(sendCtx, msg)
	}()

	select {
	case err := <-errCh:
		return err
	case <-sendCtx.Done():
		return fmt.Errorf("email delivery aborted after %s: %w", s.sendTimeout, sendCtx.Err())
	}
}

func (s *service) acquire(linkID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[linkID]; busy {
		return false
	}
	s.inFlight[linkID] = struct{}{}
	return true
}

func (s *service) release(linkID string) {
	s.mu.Lock()
	delete(s.inFlight, linkID)
	s.mu.Unlock()
}
