package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stanstork/invite-links/internal/models"
)

var ErrDuplicateID = errors.New("link id already exists")

type LinkRepository interface {
	CreateLink(ctx context.Context, link models.Link) error
	GetLink(ctx context.Context, id string) (models.Link, error)
	// MarkResponded records the response on an unanswered link. It returns
	// models.ErrAlreadyAnswered when a response was recorded earlier.
	MarkResponded(ctx context.Context, id string, response models.Response, at time.Time) (models.Link, error)
	// Count is the registry size.
	Count(ctx context.Context) int
}

type memoryLinkRepository struct {
	mu    sync.RWMutex
	links map[string]models.Link
}

// NewMemoryLinkRepository returns an empty process-local store. Contents do
// not survive a restart.
func NewMemoryLinkRepository() LinkRepository {
	return &memoryLinkRepository{links: make(map[string]models.Link)}
}

func (r *memoryLinkRepository) CreateLink(_ context.Context, link models.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.links[link.ID]; exists {
		return ErrDuplicateID
	}
	r.links[link.ID] = link
	return nil
}

func (r *memoryLinkRepository) GetLink(_ context.Context, id string) (models.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.links[id]
	if !ok {
		return models.Link{}, models.ErrNotFound
	}
	return link, nil
}

func (r *memoryLinkRepository) MarkResponded(_ context.Context, id string, response models.Response, at time.Time) (models.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[id]
	if !ok {
		return models.Link{}, models.ErrNotFound
	}
	if link.IsAnswered() {
		return link, models.ErrAlreadyAnswered
	}

	respondedAt := at
	link.Response = &response
	link.RespondedAt = &respondedAt
	r.links[id] = link
	return link, nil
}

func (r *memoryLinkRepository) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.links)
}
