package links

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanstork/invite-links/internal/models"
	"github.com/stanstork/invite-links/internal/repository"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestService(t *testing.T, opts ...Option) (Service, repository.LinkRepository, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)}
	repo := repository.NewMemoryLinkRepository()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewService(repo, zerolog.Nop(), opts...), repo, clock
}

func TestCreateLinkSetsFixedTTL(t *testing.T) {
	ctx := context.Background()
	svc, repo, clock := newTestService(t)

	id, err := svc.CreateLink(ctx, "ava@x.com", "Ava")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	link, err := repo.GetLink(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, clock.now, link.CreatedAt)
	assert.Equal(t, link.CreatedAt.Add(30*24*time.Hour), link.ExpiresAt)
	assert.False(t, link.IsAnswered())
	assert.Nil(t, link.RespondedAt)
}

func TestCreateLinkNormalizesInput(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	id, err := svc.CreateLink(ctx, "  Ava@X.com ", "  Ava Lee ")
	require.NoError(t, err)

	recipient, err := svc.GetLink(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.Recipient{Name: "Ava Lee", Email: "ava@x.com"}, recipient)
}

func TestCreateLinkValidation(t *testing.T) {
	cases := []struct {
		name      string
		email     string
		recipient string
		field     string
	}{
		{"missing email", "", "Bob", "email"},
		{"email without at", "not-an-email", "Bob", "email"},
		{"empty name", "a@b.com", "", "name"},
		{"blank name", "a@b.com", "   ", "name"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			_, err := svc.CreateLink(context.Background(), c.email, c.recipient)

			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, c.field, verr.Field)
			assert.Equal(t, 0, repo.Count(context.Background()))
		})
	}
}

func TestCreateLinkGeneratesUniqueIDs(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := svc.CreateLink(ctx, "a@b.com", "A")
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
	assert.Equal(t, 100, repo.Count(ctx))
}

func TestCreateLinkRetriesOnIDCollision(t *testing.T) {
	ctx := context.Background()
	ids := []string{"same", "same", "fresh"}
	next := func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	svc, repo, _ := newTestService(t, WithIDGenerator(next))

	first, err := svc.CreateLink(ctx, "a@b.com", "A")
	require.NoError(t, err)
	second, err := svc.CreateLink(ctx, "c@d.com", "C")
	require.NoError(t, err)

	assert.Equal(t, "same", first)
	assert.Equal(t, "fresh", second)
	assert.Equal(t, 2, repo.Count(ctx))
}

func TestGetLinkNotFoundAndExpired(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService(t)

	_, err := svc.GetLink(ctx, "never-created")
	assert.ErrorIs(t, err, models.ErrNotFound)

	id, err := svc.CreateLink(ctx, "a@b.com", "A")
	require.NoError(t, err)

	clock.now = clock.now.Add(models.LinkTTL)
	_, err = svc.GetLink(ctx, id)
	require.NoError(t, err, "link is still valid at exactly expiresAt")

	clock.now = clock.now.Add(time.Second)
	_, err = svc.GetLink(ctx, id)
	assert.ErrorIs(t, err, models.ErrExpired)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}

func TestGetLinkRequiresID(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GetLink(context.Background(), " ")

	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestMarkResponded(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService(t)

	id, err := svc.CreateLink(ctx, "a@b.com", "A")
	require.NoError(t, err)

	clock.now = clock.now.Add(time.Hour)
	link, err := svc.MarkResponded(ctx, id, models.ResponseYes)
	require.NoError(t, err)
	assert.Equal(t, models.ResponseYes, *link.Response)
	assert.Equal(t, clock.now, *link.RespondedAt)

	_, err = svc.MarkResponded(ctx, id, models.ResponseNo)
	assert.ErrorIs(t, err, models.ErrAlreadyAnswered)
}

func TestMarkRespondedOnExpiredLink(t *testing.T) {
	ctx := context.Background()
	svc, repo, clock := newTestService(t)

	id, err := svc.CreateLink(ctx, "a@b.com", "A")
	require.NoError(t, err)

	clock.now = clock.now.Add(models.LinkTTL + time.Minute)
	_, err = svc.MarkResponded(ctx, id, models.ResponseYes)
	assert.ErrorIs(t, err, models.ErrExpired)

	link, err := repo.GetLink(ctx, id)
	require.NoError(t, err)
	assert.False(t, link.IsAnswered())
}

func TestCreateLinkLogsRegistrySize(t *testing.T) {
	var buf bytes.Buffer
	repo := repository.NewMemoryLinkRepository()
	svc := NewService(repo, zerolog.New(&buf))

	_, err := svc.CreateLink(context.Background(), "a@b.com", "A")
	require.NoError(t, err)
	_, err = svc.CreateLink(context.Background(), "c@d.com", "C")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"registry_size":1`)
	assert.Contains(t, buf.String(), `"registry_size":2`)
}
