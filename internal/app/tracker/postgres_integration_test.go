//go:build integration

package tracker

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relayhub/internal/app/db"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/app/tracker/
func newPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewPostgresStore(pool)
}

func TestPostgresStore_AddTimeAccumulates(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()
	user := "it-" + uuid.NewString()

	require.NoError(t, s.AddTime(ctx, TimeLog{UserID: user, Domain: "github.com", Date: "2024-05-01", DurationMs: 1000}))
	require.NoError(t, s.AddTime(ctx, TimeLog{UserID: user, Domain: "github.com", Date: "2024-05-01", DurationMs: 2500}))
	require.NoError(t, s.AddTime(ctx, TimeLog{UserID: user, Domain: "github.com", Date: "2024-05-02", DurationMs: 400}))
	require.NoError(t, s.AddTime(ctx, TimeLog{UserID: user, Domain: "youtube.com", Date: "2024-05-01", DurationMs: 700}))

	all, err := s.TimeLogs(ctx, user, "")
	require.NoError(t, err)
	assert.Equal(t, []TimeLog{
		{UserID: user, Domain: "github.com", Date: "2024-05-01", DurationMs: 3500},
		{UserID: user, Domain: "youtube.com", Date: "2024-05-01", DurationMs: 700},
		{UserID: user, Domain: "github.com", Date: "2024-05-02", DurationMs: 400},
	}, all)

	day, err := s.TimeLogs(ctx, user, "2024-05-02")
	require.NoError(t, err)
	assert.Equal(t, []TimeLog{{UserID: user, Domain: "github.com", Date: "2024-05-02", DurationMs: 400}}, day)

	none, err := s.TimeLogs(ctx, user, "2023-01-01")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostgresStore_Classifications(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()
	user := "it-" + uuid.NewString()

	require.NoError(t, s.SetClassification(ctx, Classification{UserID: user, Domain: "reddit.com", Type: CategoryProductive}))
	require.NoError(t, s.SetClassification(ctx, Classification{UserID: user, Domain: "reddit.com", Type: CategoryUnproductive}))
	require.NoError(t, s.SetClassification(ctx, Classification{UserID: user, Domain: "arxiv.org", Type: CategoryProductive}))

	list, err := s.Classifications(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []Classification{
		{UserID: user, Domain: "arxiv.org", Type: CategoryProductive},
		{UserID: user, Domain: "reddit.com", Type: CategoryUnproductive},
	}, list)

	require.NoError(t, s.RemoveClassification(ctx, user, "reddit.com"))
	assert.ErrorIs(t, s.RemoveClassification(ctx, user, "reddit.com"), ErrNotFound)
}

func TestPostgresStore_Users(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()
	username := "it_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	created, err := s.CreateUser(ctx, username, "hash")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, username, "other")
	assert.ErrorIs(t, err, ErrUserExists)

	found, err := s.UserByUsername(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, created, found)

	_, err = s.UserByUsername(ctx, username+"x")
	assert.ErrorIs(t, err, ErrNotFound)
}
