package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/videocollect/internal/dependencies/mocks"
	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/session"
)

func TestStoreCopiesOnSaveAndLoad(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	store := New(clk)
	ctx := context.Background()

	sess := &session.Session{ID: "a", Staged: &model.StagedVideo{Filename: "one.mp4"}}
	require.NoError(t, store.Save(ctx, sess, time.Hour))
	sess.Staged.Filename = "changed.mp4"

	loaded, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "one.mp4", loaded.Staged.Filename)
}

func TestStoreExpiry(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	store := New(clk)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &session.Session{ID: "a"}, time.Hour))
	require.NoError(t, store.Save(ctx, &session.Session{ID: "b"}, 3*time.Hour))

	clk.Advance(2 * time.Hour)

	_, err := store.Load(ctx, "a")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, 0, store.CleanExpired())

	clk.Advance(2 * time.Hour)
	assert.Equal(t, 1, store.CleanExpired())
}

func TestStorePingAfterClose(t *testing.T) {
	store := New(mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &session.Session{ID: "a"}, time.Hour))
	require.NoError(t, store.Ping(ctx))

	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Ping(ctx), ErrClosed)
	_, err := store.Load(ctx, "a")
	assert.ErrorIs(t, err, session.ErrNotFound)
}
