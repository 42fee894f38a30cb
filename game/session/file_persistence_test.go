package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/incognito/game/engine"
	"github.com/wricardo/incognito/game/service"
)

// staticConfigs serves the classic variant only
type staticConfigs struct{}

func (staticConfigs) LoadConfig(name string) (*engine.GameConfig, error) {
	if name != "classic" {
		return nil, errors.New("configuration not found")
	}
	return engine.DefaultConfig(), nil
}

func (staticConfigs) ListConfigs() ([]*service.VariantInfo, error) {
	return []*service.VariantInfo{{VariantID: "classic", Name: "classic"}}, nil
}

func (staticConfigs) GetDefault() *engine.GameConfig {
	return engine.DefaultConfig()
}

func (staticConfigs) SaveConfig(name string, config *engine.GameConfig) error {
	return errors.New("read only")
}

func sq(s string) engine.Square {
	return engine.MustParseSquare(s)
}

func newTestPersistence(t *testing.T) (*FilePersistence, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "sessions")
	persistence, err := NewFilePersistence(dir, staticConfigs{})
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	return persistence, dir
}

func TestFilePersistence(t *testing.T) {
	persistence, dir := newTestPersistence(t)

	eng := engine.NewGame()
	eng.Move(sq("c1"), sq("c3"))
	eng.Move(sq("d4"), sq("d3"))
	eng.Interrogate(sq("c3"), sq("d3"))

	sess := &service.Session{
		ID:             "test1",
		Variant:        "classic",
		Engine:         eng,
		Config:         eng.GetConfig(),
		CreatedAt:      time.Now().Truncate(time.Second),
		LastAccessedAt: time.Now().Truncate(time.Second),
	}

	t.Run("Save and Load Session", func(t *testing.T) {
		if err := persistence.Save(sess); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}
		if !persistence.Exists("test1") {
			t.Error("Session file should exist after save")
		}

		loaded, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}

		if loaded.ID != sess.ID || loaded.Variant != sess.Variant {
			t.Errorf("Unexpected session %s/%s", loaded.ID, loaded.Variant)
		}
		if !loaded.CreatedAt.Equal(sess.CreatedAt) {
			t.Errorf("CreatedAt not preserved: %v vs %v", loaded.CreatedAt, sess.CreatedAt)
		}

		want, got := eng.GetState(), loaded.Engine.GetState()
		if want.Board.Layout(true)[2] != got.Board.Layout(true)[2] {
			t.Errorf("Board not restored: %v vs %v", got.Board.Layout(true), want.Board.Layout(true))
		}
		if got.Current != want.Current || len(got.Log) != len(want.Log) {
			t.Errorf("Game not restored: current %s, %d actions", got.Current, len(got.Log))
		}
	})

	t.Run("File holds save text", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "test1.json"))
		if err != nil {
			t.Fatalf("Failed to read session file: %v", err)
		}
		var stored PersistedSessionData
		if err := json.Unmarshal(data, &stored); err != nil {
			t.Fatalf("Session file is not JSON: %v", err)
		}
		if !strings.HasSuffix(stored.Save, "I c3->d3\n") {
			t.Errorf("Expected the action log in the session file, got %q", stored.Save)
		}
	})

	t.Run("List Sessions", func(t *testing.T) {
		ids, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		if len(ids) != 1 || ids[0] != "test1" {
			t.Errorf("Unexpected IDs %v", ids)
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		if err := persistence.Delete("test1"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if persistence.Exists("test1") {
			t.Error("Session file should be removed")
		}
		if err := persistence.Delete("test1"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Load Missing Session", func(t *testing.T) {
		if _, err := persistence.Load("nope"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestFilePersistence_CorruptFiles(t *testing.T) {
	persistence, dir := newTestPersistence(t)

	os.WriteFile(filepath.Join(dir, "badjson.json"), []byte("{"), 0644)
	os.WriteFile(filepath.Join(dir, "badsave.json"), []byte(`{"id":"badsave","variant":"classic","save":"X\n"}`), 0644)
	os.WriteFile(filepath.Join(dir, "badvariant.json"), []byte(`{"id":"badvariant","variant":"nope","save":"B\n"}`), 0644)

	for _, id := range []string{"badjson", "badsave", "badvariant"} {
		if _, err := persistence.Load(id); err == nil {
			t.Errorf("Expected error loading %s", id)
		}
	}

	// Broken files are skipped when loading everything
	manager := NewManagerWithPersistence(persistence)
	if err := manager.LoadPersistedSessions(); err != nil {
		t.Fatalf("LoadPersistedSessions: %v", err)
	}
	if manager.Count() != 0 {
		t.Errorf("Expected no sessions loaded, got %d", manager.Count())
	}
}

func TestManagerWithPersistence(t *testing.T) {
	persistence, _ := newTestPersistence(t)
	manager := NewManagerWithPersistence(persistence)

	sess, err := manager.Create("auto1", "classic", engine.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if !persistence.Exists(sess.ID) {
		t.Error("Session should be auto-saved on creation")
	}

	sess.Engine.Move(sq("a3"), sq("b4"))
	if err := manager.Save(sess.ID); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Run("Get Session Loads from Persistence", func(t *testing.T) {
		manager2 := NewManagerWithPersistence(persistence)
		loaded, err := manager2.Get("auto1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if len(loaded.Engine.GetMoveHistory()) != 1 {
			t.Error("Expected the saved move to be replayed")
		}
		if manager2.Count() != 1 {
			t.Error("Loaded session should be cached in memory")
		}
	})

	t.Run("LoadPersistedSessions", func(t *testing.T) {
		manager3 := NewManagerWithPersistence(persistence)
		if err := manager3.LoadPersistedSessions(); err != nil {
			t.Fatalf("LoadPersistedSessions: %v", err)
		}
		if manager3.Count() != 1 {
			t.Errorf("Expected 1 session, got %d", manager3.Count())
		}
	})

	t.Run("SaveAllSessions", func(t *testing.T) {
		if err := manager.SaveAllSessions(); err != nil {
			t.Errorf("SaveAllSessions: %v", err)
		}
	})

	t.Run("Delete removes file", func(t *testing.T) {
		if err := manager.Delete("auto1"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if persistence.Exists("auto1") {
			t.Error("Session file should be deleted")
		}
	})
}
