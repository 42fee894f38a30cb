package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *GameConfig)
		wantErr string
	}{
		{"classic is valid", func(c *GameConfig) {}, ""},
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"too few rows", func(c *GameConfig) { c.Layout = c.Layout[:4] }, "must have 5 rows"},
		{"short row", func(c *GameConfig) { c.Layout[0] = "..bb" }, "row 1 must have 5 characters"},
		{"bad character", func(c *GameConfig) { c.Layout[0] = "..bx." }, "invalid character 'x'"},
		{"two white spies", func(c *GameConfig) { c.Layout[2] = "W...B" }, "white must have exactly one spy"},
		{"no black spy", func(c *GameConfig) { c.Layout[2] = "w...b" }, "black must have exactly one spy"},
		{"piece on own castle", func(c *GameConfig) { c.Layout[4] = "ww..." }, "own castle"},
		{"too many pieces", func(c *GameConfig) { c.Layout[4] = ".www." }, "at most 5 pieces"},
		{"nil config", nil, "config is nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var config *GameConfig
			if tt.mutate != nil {
				config = DefaultConfig()
				tt.mutate(config)
			}

			err := ValidateGameConfig(config)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadGameConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corner.json")
	content := `{
  "name": "corner",
  "description": "Spies start in the corners",
  "layout": ["B..b.", ".....", ".....", ".....", ".w..W"],
  "starting_player": "black"
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadGameConfig(path)
	if err != nil {
		t.Fatalf("LoadGameConfig: %v", err)
	}
	if config.StartingPlayer != Black {
		t.Errorf("expected black to start, got %s", config.StartingPlayer)
	}

	state := InitGameStateFromConfig(config)
	if state.Current != Black {
		t.Error("starting player not applied")
	}
	if p := state.Board.At(Square{0, 0}); p == nil || p.Role != Spy || p.Color != Black {
		t.Errorf("expected black spy on a5, got %+v", p)
	}
}

func TestLoadGameConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadGameConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0644)
	if _, err := LoadGameConfig(bad); err == nil {
		t.Error("expected error for invalid JSON")
	}

	invalid := filepath.Join(dir, "invalid.json")
	os.WriteFile(invalid, []byte(`{"name":"x","layout":["....."]}`), 0644)
	if _, err := LoadGameConfig(invalid); err == nil {
		t.Error("expected validation error")
	}
}

func TestInitGameStateFromConfig_NilIsClassic(t *testing.T) {
	a := InitGameStateFromConfig(nil)
	b := InitGameStateFromConfig(DefaultConfig())
	if !boardsEqual(&a.Board, &b.Board) || a.Current != b.Current {
		t.Error("nil config should produce the classic layout")
	}
}

func TestBoardLayout(t *testing.T) {
	gs := NewGameState()

	revealed := gs.Board.Layout(true)
	for i, row := range ClassicLayout {
		if revealed[i] != row {
			t.Errorf("row %d: got %q, expected %q", i, revealed[i], row)
		}
	}

	hidden := gs.Board.Layout(false)
	expected := []string{"..bb.", "...bb", "w...b", "ww...", ".ww.."}
	for i, row := range expected {
		if hidden[i] != row {
			t.Errorf("hidden row %d: got %q, expected %q", i, hidden[i], row)
		}
	}
}
