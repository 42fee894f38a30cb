// Package archive keeps finished games in a SQLite database so they can be
// listed and replayed later. Each record holds the game in save-file format.
package archive

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/wricardo/incognito/game/engine"
	"github.com/wricardo/incognito/game/service"
)

//go:embed migrations/*.sql
var migrations embed.FS

var ErrNotFound = errors.New("archived game not found")

// DefaultListLimit caps List when no positive limit is given
const DefaultListLimit = 50

// SQLiteArchive implements service.Archive on top of SQLite
type SQLiteArchive struct {
	db *sql.DB
}

// NewSQLiteArchive opens (creating if needed) the archive at path and runs
// the schema migrations. Use ":memory:" for a throwaway archive.
func NewSQLiteArchive(ctx context.Context, path string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		migration, err := migrations.ReadFile(name)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}

	return &SQLiteArchive{db: db}, nil
}

// Close releases the database
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

// Add stores a finished game and assigns its ID when empty
func (a *SQLiteArchive) Add(ctx context.Context, game *service.FinishedGame) error {
	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	if game.FinishedAt.IsZero() {
		game.FinishedAt = time.Now()
	}

	q := `
	INSERT INTO finished_games (id, session_id, variant, outcome, moves, save, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	_, err := a.db.ExecContext(ctx, q, game.ID, game.SessionID, game.Variant, string(game.Outcome),
		game.Moves, game.Save, game.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert finished game: %w", err)
	}

	return nil
}

// List returns the most recently finished games first
func (a *SQLiteArchive) List(ctx context.Context, limit int) ([]*service.FinishedGame, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	q := `
	SELECT id, session_id, variant, outcome, moves, save, finished_at
	FROM finished_games
	ORDER BY finished_at DESC, id
	LIMIT ?;
	`
	rows, err := a.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query finished games: %w", err)
	}
	defer rows.Close()

	games := []*service.FinishedGame{}
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read finished games: %w", err)
	}

	return games, nil
}

// Get returns one archived game
func (a *SQLiteArchive) Get(ctx context.Context, id string) (*service.FinishedGame, error) {
	q := `
	SELECT id, session_id, variant, outcome, moves, save, finished_at
	FROM finished_games
	WHERE id = ?;
	`
	game, err := scanGame(a.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return game, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (*service.FinishedGame, error) {
	var (
		game       service.FinishedGame
		outcome    string
		finishedAt int64
	)
	if err := row.Scan(&game.ID, &game.SessionID, &game.Variant, &outcome, &game.Moves, &game.Save, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan finished game: %w", err)
	}
	game.Outcome = engine.Outcome(outcome)
	game.FinishedAt = time.UnixMilli(finishedAt)
	return &game, nil
}
