package session

import (
	"sync"
	"testing"
	"time"

	"github.com/wricardo/incognito/game/engine"
	"github.com/wricardo/incognito/game/service"
)

func createTestConfig() *engine.GameConfig {
	return engine.DefaultConfig()
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		sess, err := manager.Create("test-session", "classic", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if sess.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", sess.ID)
		}
		if sess.Engine == nil {
			t.Error("Expected engine to be initialized")
		}
		if sess.Variant != "classic" {
			t.Errorf("Expected variant 'classic', got '%s'", sess.Variant)
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		sess, err := manager.Create("", "", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(sess.ID) != 4 {
			t.Errorf("Expected 4-character session ID, got %q", sess.ID)
		}
		if sess.Variant != config.Name {
			t.Errorf("Expected variant to default to the config name, got %q", sess.Variant)
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create("test-session", "classic", config)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", "classic", config)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("../escape", "classic", config)
		if err != ErrInvalidSessionID {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		invalidConfig := createTestConfig()
		invalidConfig.Name = ""
		if _, err := manager.Create("invalid-test", "", invalidConfig); err == nil {
			t.Error("Expected error for invalid config")
		}
	})
}

func TestManager_Add(t *testing.T) {
	manager := NewManager()
	eng := engine.NewGame()
	eng.Move(engine.MustParseSquare("a3"), engine.MustParseSquare("b4"))

	sess := &service.Session{ID: "local", Variant: "classic", Engine: eng, Config: eng.GetConfig()}
	if err := manager.Add(sess); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := manager.Get("LOCAL")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Engine.GetMoveHistory()) != 1 {
		t.Error("Added session should keep its game")
	}
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("get-test", "classic", createTestConfig())

	t.Run("get existing session", func(t *testing.T) {
		sess, err := manager.Get("get-test")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if sess != created {
			t.Error("Expected the same session")
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		sess, err := manager.Get("GET-TEST")
		if err != nil {
			t.Fatalf("Failed to get session with different case: %v", err)
		}
		if sess != created {
			t.Error("Expected same session regardless of case")
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		_, err := manager.Get("non-existent")
		if err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	manager.Create("delete-test", "classic", createTestConfig())

	if err := manager.Delete("delete-test"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := manager.Get("delete-test"); err != ErrSessionNotFound {
		t.Error("Expected session to be deleted")
	}
	if err := manager.Delete("non-existent"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	sess, _ := manager.Create("access-test", "classic", createTestConfig())
	before := sess.LastAccessedAt

	time.Sleep(10 * time.Millisecond)
	if err := manager.UpdateLastAccessed("access-test"); err != nil {
		t.Fatalf("UpdateLastAccessed: %v", err)
	}
	if !sess.LastAccessedAt.After(before) {
		t.Error("Expected last accessed time to advance")
	}
	if err := manager.UpdateLastAccessed("missing"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	manager := NewManager()
	old, _ := manager.Create("old", "classic", createTestConfig())
	manager.Create("fresh", "classic", createTestConfig())
	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Errorf("Expected 1 session removed, got %d", removed)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session left, got %d", manager.Count())
	}
}

func TestManager_SaveWithoutPersistence(t *testing.T) {
	manager := NewManager()
	if err := manager.Save("anything"); err != nil {
		t.Errorf("Save without persistence should be a no-op, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := manager.Create("", "classic", config)
			if err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			manager.Get(sess.ID)
			manager.UpdateLastAccessed(sess.ID)
			manager.List()
		}()
	}
	wg.Wait()

	if manager.Count() != 20 {
		t.Errorf("Expected 20 sessions, got %d", manager.Count())
	}
}
