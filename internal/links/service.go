// Package links owns invitation links: creation, storage and
// expiration-aware lookup.
package links

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stanstork/invite-links/internal/models"
	"github.com/stanstork/invite-links/internal/repository"
)

const maxIDAttempts = 3

type Service interface {
	CreateLink(ctx context.Context, email, name string) (string, error)
	GetLink(ctx context.Context, id string) (models.Recipient, error)
	// Lookup returns the full link record regardless of expiry.
	Lookup(ctx context.Context, id string) (models.Link, error)
	// MarkResponded records a response on a live, unanswered link.
	MarkResponded(ctx context.Context, id string, response models.Response) (models.Link, error)
}

type Option func(*service)

// WithClock overrides the time source used for creation and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the link id source.
func WithIDGenerator(gen func() string) Option {
	return func(s *service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

type service struct {
	repo   repository.LinkRepository
	logger zerolog.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(repo repository.LinkRepository, logger zerolog.Logger, opts ...Option) Service {
	s := &service{
		repo:   repo,
		logger: logger.With().Str("component", "link_registry").Logger(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) CreateLink(ctx context.Context, email, name string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" {
		return "", models.NewValidationError("email", "email is required")
	}
	if !strings.Contains(email, "@") {
		return "", models.NewValidationError("email", "email must contain @")
	}
	if name == "" {
		return "", models.NewValidationError("name", "name is required")
	}

	createdAt := s.now()
	link := models.Link{
		RecipientEmail: email,
		RecipientName:  name,
		CreatedAt:      createdAt,
		ExpiresAt:      createdAt.Add(models.LinkTTL),
	}

	for attempt := 1; ; attempt++ {
		link.ID = s.newID()
		err := s.repo.CreateLink(ctx, link)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateID) || attempt >= maxIDAttempts {
			s.logger.Error().Err(err).Msg("failed to store link")
			return "", err
		}
	}

	s.logger.Info().
		Str("link_id", link.ID).
		Time("expires_at", link.ExpiresAt).
		Int("registry_size", s.repo.Count(ctx)).
		Msg("link created")
	return link.ID, nil
}

func (s *service) GetLink(ctx context.Context, id string) (models.Recipient, error) {
	link, err := s.live(ctx, id)
	if err != nil {
		return models.Recipient{}, err
	}
	return models.Recipient{Name: link.RecipientName, Email: link.RecipientEmail}, nil
}

func (s *service) Lookup(ctx context.Context, id string) (models.Link, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Link{}, models.NewValidationError("id", "link id is required")
	}
	return s.repo.GetLink(ctx, id)
}

func (s *service) MarkResponded(ctx context.Context, id string, response models.Response) (models.Link, error) {
	if _, err := s.live(ctx, id); err != nil {
		return models.Link{}, err
	}
	return s.repo.MarkResponded(ctx, strings.TrimSpace(id), response, s.now())
}

func (s *service) live(ctx context.Context, id string) (models.Link, error) {
	link, err := s.Lookup(ctx, id)
	if err != nil {
		return models.Link{}, err
	}
	if link.IsExpired(s.now()) {
		return models.Link{}, models.ErrExpired
	}
	return link, nil
}
