package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/incognito/game/engine"
)

func createValidConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Corner",
		Description: "Spies start in the corners",
		Layout: []string{
			"B..b.",
			".....",
			".....",
			".....",
			".w..W",
		},
		StartingPlayer: engine.Black,
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("empty directory serves classic", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "classic" {
			t.Errorf("Expected classic default, got %s", manager.GetDefault().Name)
		}
	})

	t.Run("no directory", func(t *testing.T) {
		manager, err := NewManager("")
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		variants, err := manager.ListConfigs()
		if err != nil || len(variants) != 1 || variants[0].VariantID != ClassicID {
			t.Errorf("Expected only classic, got %v (%v)", variants, err)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("classic.json overrides the built-in layout", func(t *testing.T) {
		dir := t.TempDir()
		custom := createValidConfig()
		custom.Name = "house classic"
		writeConfigFile(t, dir, "classic", custom)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "house classic" {
			t.Errorf("Expected overridden default, got %s", manager.GetDefault().Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "corner", createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("corner")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Corner" || config.StartingPlayer != engine.Black {
			t.Errorf("Unexpected config %+v", config)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		if _, err := manager.LoadConfig("corner.json"); err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("corner")
		config2, _ := manager.LoadConfig("corner")
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		if _, err := manager.LoadConfig("non-existent"); err != ErrConfigNotFound {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("path outside directory", func(t *testing.T) {
		if _, err := manager.LoadConfig("../corner"); err != ErrConfigNotFound {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "invalid.json"), []byte(`{"name": "x", "layout": ["....."]}`), 0644)
		if _, err := manager.LoadConfig("invalid"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "malformed.json"), []byte(`{"name": "Malformed", invalid json}`), 0644)
		if _, err := manager.LoadConfig("malformed"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "corner", createValidConfig())
	writeConfigFile(t, dir, "mirror", createValidConfig())
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644)
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	variants, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}

	var ids []string
	for _, v := range variants {
		ids = append(ids, v.VariantID)
	}
	expected := []string{"classic", "corner", "mirror"}
	if len(ids) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, ids)
	}
	for i := range expected {
		if ids[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, ids)
		}
	}
	if variants[1].Filename != "corner.json" || len(variants[1].Layout) != engine.BoardSize {
		t.Errorf("Unexpected variant info %+v", variants[1])
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SaveConfig("corner", createValidConfig()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "corner.json")); err != nil {
		t.Errorf("Expected corner.json to be written: %v", err)
	}

	invalid := createValidConfig()
	invalid.Layout[0] = "....."
	if err := manager.SaveConfig("broken", invalid); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}

	if err := manager.SaveConfig("../escape", createValidConfig()); err == nil {
		t.Error("Expected error for a path outside the directory")
	}

	// A fresh manager sees the saved file
	reread, _ := NewManager(dir)
	if _, err := reread.LoadConfig("corner"); err != nil {
		t.Errorf("Saved variant not loadable: %v", err)
	}
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "corner", createValidConfig())
	manager, _ := NewManager(dir)

	if err := manager.SetDefault("corner"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if manager.GetDefault().Name != "Corner" {
		t.Error("Default not changed")
	}
	if err := manager.SetDefault("missing"); err != ErrConfigNotFound {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	changed := createValidConfig()
	changed.Description = "edited"
	writeConfigFile(t, dir, "corner", changed)
	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache: %v", err)
	}
	config, _ := manager.LoadConfig("corner")
	if config.Description != "edited" {
		t.Error("Expected edited variant after refresh")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "corner", createValidConfig())
	manager, _ := NewManager(dir)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadConfig("corner"); err != nil {
				t.Errorf("LoadConfig: %v", err)
			}
			manager.ListConfigs()
			manager.GetDefault()
		}()
	}
	wg.Wait()
}
