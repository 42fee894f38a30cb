package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/incognito/game/codec"
	"github.com/wricardo/incognito/game/engine"
	"github.com/wricardo/incognito/game/service"
)

func finishedGame(t *testing.T) *service.FinishedGame {
	t.Helper()
	eng := engine.NewGame()
	require.True(t, eng.Move(engine.MustParseSquare("c1"), engine.MustParseSquare("d2")))
	require.True(t, eng.Move(engine.MustParseSquare("e3"), engine.MustParseSquare("e2")))
	require.True(t, eng.Interrogate(engine.MustParseSquare("d2"), engine.MustParseSquare("e2")))

	state := eng.GetState()
	return &service.FinishedGame{
		SessionID: "ab12",
		Variant:   "classic",
		Outcome:   state.Outcome,
		Moves:     len(state.Log),
		Save:      string(codec.Marshal(state)),
	}
}

func TestSQLiteArchive_AddGet(t *testing.T) {
	ctx := context.Background()
	a, err := NewSQLiteArchive(ctx, ":memory:")
	require.NoError(t, err)
	defer a.Close()

	game := finishedGame(t)
	require.NoError(t, a.Add(ctx, game))
	assert.NotEmpty(t, game.ID)
	assert.False(t, game.FinishedAt.IsZero())

	got, err := a.Get(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, game.SessionID, got.SessionID)
	assert.Equal(t, engine.OutcomeSpyFound, got.Outcome)
	assert.Equal(t, 3, got.Moves)
	assert.Equal(t, game.FinishedAt.UnixMilli(), got.FinishedAt.UnixMilli())

	// The stored save replays to the same finished game
	eng, err := codec.Unmarshal([]byte(got.Save), nil)
	require.NoError(t, err)
	assert.True(t, eng.IsFinished())
}

func TestSQLiteArchive_GetMissing(t *testing.T) {
	ctx := context.Background()
	a, err := NewSQLiteArchive(ctx, ":memory:")
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteArchive_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	a, err := NewSQLiteArchive(ctx, ":memory:")
	require.NoError(t, err)
	defer a.Close()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		game := finishedGame(t)
		game.SessionID = string(rune('a' + i))
		game.FinishedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, a.Add(ctx, game))
	}

	games, err := a.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "c", games[0].SessionID)
	assert.Equal(t, "b", games[1].SessionID)

	all, err := a.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteArchive_DuplicateID(t *testing.T) {
	ctx := context.Background()
	a, err := NewSQLiteArchive(ctx, ":memory:")
	require.NoError(t, err)
	defer a.Close()

	game := finishedGame(t)
	require.NoError(t, a.Add(ctx, game))
	assert.Error(t, a.Add(ctx, game))
}

func TestSQLiteArchive_ReopenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "archive.db")

	a, err := NewSQLiteArchive(ctx, path)
	require.NoError(t, err)
	game := finishedGame(t)
	require.NoError(t, a.Add(ctx, game))
	require.NoError(t, a.Close())

	// Migrations are idempotent
	b, err := NewSQLiteArchive(ctx, path)
	require.NoError(t, err)
	defer b.Close()

	games, err := b.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, game.ID, games[0].ID)
}

func TestSQLiteArchive_ImplementsServiceArchive(t *testing.T) {
	var _ service.Archive = (*SQLiteArchive)(nil)
}
