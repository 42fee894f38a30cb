// Command analyze prints a human-readable summary of Incognito save files:
// whose turn it is, how the log splits into moves and interrogations, what is
// left on the board, and whether replay dropped any recorded action.
//
//	analyze [-variant file.json] save.txt...
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wricardo/incognito/game/codec"
	"github.com/wricardo/incognito/game/engine"
	"github.com/wricardo/incognito/shell"
)

// SaveSummary is what analyze reports about one save
type SaveSummary struct {
	Path           string
	Turn           engine.Color
	Moves          int
	Interrogations int
	Recorded       int
	White          int
	Black          int
	Finished       bool
	Outcome        engine.Outcome
	Options        int
}

// Skipped is the number of recorded actions replay did not keep
func (s SaveSummary) Skipped() int {
	return s.Recorded - s.Moves - s.Interrogations
}

func main() {
	args := os.Args[1:]

	var config *engine.GameConfig
	if len(args) >= 2 && args[0] == "-variant" {
		var err error
		config, err = engine.LoadGameConfig(args[1])
		if err != nil {
			fmt.Printf("Error loading variant: %v\n", err)
			os.Exit(1)
		}
		args = args[2:]
	}

	if len(args) == 0 {
		fmt.Println("usage: analyze [-variant file.json] save.txt...")
		os.Exit(2)
	}

	failed := false
	for _, path := range args {
		fmt.Printf("\n=== Analyzing %s ===\n", path)
		if err := analyzeSave(os.Stdout, path, config); err != nil {
			fmt.Printf("Error: %v\n", err)
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

// countRecords counts the action lines of a save without replaying them
func countRecords(data []byte) int {
	n := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "D ") || strings.HasPrefix(line, "I ") {
			n++
		}
	}
	return n
}

// summarize replays the save at path on the given variant
func summarize(path string, config *engine.GameConfig) (*SaveSummary, *engine.GameEngine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read save: %w", err)
	}

	eng, err := codec.Unmarshal(data, config)
	if err != nil {
		return nil, nil, err
	}

	state := eng.GetState()
	summary := &SaveSummary{
		Path:     path,
		Turn:     state.Current,
		Recorded: countRecords(data),
		White:    state.Board.Count(engine.White),
		Black:    state.Board.Count(engine.Black),
		Finished: state.Finished,
		Outcome:  state.Outcome,
		Options:  len(eng.PossibleActions()),
	}
	for _, a := range state.Log {
		if a.Kind == engine.ActionInterrogate {
			summary.Interrogations++
		} else {
			summary.Moves++
		}
	}

	return summary, eng, nil
}

// analyzeSave writes the summary and the revealed board of one save
func analyzeSave(w io.Writer, path string, config *engine.GameConfig) error {
	summary, eng, err := summarize(path, config)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Actions: %d (%d moves, %d interrogations)\n", summary.Moves+summary.Interrogations, summary.Moves, summary.Interrogations)
	fmt.Fprintf(w, "Pieces: white %d, black %d\n", summary.White, summary.Black)

	if summary.Finished {
		fmt.Fprintf(w, "Finished: %s\n", strings.ReplaceAll(string(summary.Outcome), "_", " "))
	} else {
		fmt.Fprintf(w, "To play: %s (%d possible actions)\n", summary.Turn, summary.Options)
	}

	if skipped := summary.Skipped(); skipped > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d recorded actions were illegal and dropped during replay\n", skipped)
	} else {
		fmt.Fprintf(w, "✅ Every recorded action replays\n")
	}

	return shell.RenderASCII(w, &eng.GetState().Board, true)
}
