// Command validate checks the variant JSON files in a directory (default
// ../variants). For each file it checks:
//   - JSON structure and the layout rules enforced by the engine
//   - 5x5 grid of '.', 'w', 'W', 'b', 'B' with one spy per colour
//   - No piece deployed on its own castle
//   - Playability: both colours have an opening move, and the side to start
//     cannot lose on its first action only
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/incognito/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single variant file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	playability := validatePlayability(&config)
	result.Valid = playability.Valid
	result.Errors = append(result.Errors, playability.Errors...)

	if result.Valid {
		state := engine.InitGameStateFromConfig(&config)
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Pieces: white %d, black %d", state.Board.Count(engine.White), state.Board.Count(engine.Black)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Starting player: %s", config.StartingPlayer))
	}

	return result
}

// validatePlayability checks the opening position of a valid variant. Each
// colour needs at least one move, and the starting player must have an
// opening action that does not end the game against it.
func validatePlayability(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot start game: %v", err))
		return result
	}

	for _, color := range []engine.Color{engine.White, engine.Black} {
		state := eng.GetState().Clone()
		state.Current = color

		moves := 0
		for _, from := range engine.AllSquares() {
			if p := state.Board.At(from); p != nil && p.Color == color {
				moves += len(engine.LegalMoves(state, from))
			}
		}

		if moves == 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s has no opening move", color))
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Opening moves for %s: %d", color, moves))
		}
	}

	// Trying every opening action on a copy shows whether the starting player
	// is forced into a losing interrogation.
	safe := 0
	opening := eng.PossibleActions()
	for _, action := range opening {
		trial, err := engine.NewEngine(config)
		if err != nil {
			continue
		}
		if _, err := trial.Apply(action); err != nil {
			continue
		}
		state := trial.GetState()
		if !state.Finished || state.Outcome == engine.OutcomeSpyFound {
			safe++
		}
	}

	if safe == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("%s loses on every opening action", config.StartingPlayer))
	}

	return result
}

// main scans the variants directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	variantsDir := "../variants"
	if len(os.Args) > 1 {
		variantsDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(variantsDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding variant files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All variants are valid!")
	} else {
		fmt.Println("❌ Some variants have errors")
		os.Exit(1)
	}
}
