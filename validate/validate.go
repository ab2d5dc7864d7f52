// Command validate provides a small CLI that validates arena configuration
// JSON files in the ../configs directory. It checks:
//   - JSON structure and required fields
//   - World dimensions, obstacle geometry, and physics parameter sanity
//   - Start pose and spot clearance (the vehicle must fit at both)
//   - Reachability: the spot can be reached from the start pose without
//     the vehicle's collision circle ever overlapping an obstacle
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parkbay/parkbay/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single arena JSON file. It performs
// structural checks, geometry/physics validation via the engine, clearance
// checks for the start pose and the spot, and a reachability analysis.
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

	var config engine.ArenaConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateArenaConfig(&config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid arena: %v", err))
		return result
	}

	radius := vehicleRadius(config.Vehicle)

	// Start pose clearance is part of engine validation; the spot is not,
	// since a round can legally run in an arena whose spot is blocked. For
	// shipped configs that is still a defect worth flagging.
	if hit := engine.FirstObstacleHit(config.Spot.X, config.Spot.Y, radius, config.Obstacles); hit != engine.NoObstacle {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Spot center (%.0f, %.0f) overlaps obstacle %d", config.Spot.X, config.Spot.Y, hit))
	}

	// Reachability validation - check the spot can be reached from the start
	if result.Valid {
		reachabilityResult := validateReachability(&config, radius)
		result.Errors = append(result.Errors, reachabilityResult.Errors...)
		if !reachabilityResult.Valid {
			result.Valid = false
		}
	}

	// Add informational data
	if result.Valid {
		coverage := obstacleCoverage(&config)
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ World: %.0fx%.0f", config.WorldWidth, config.WorldHeight))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Obstacles: %d (%.1f%% coverage)", len(config.Obstacles), coverage*100))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Spot: (%.0f, %.0f) %.0fx%.0f", config.Spot.X, config.Spot.Y, config.Spot.Width, config.Spot.Height))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Start: (%.0f, %.0f)", config.Start.X, config.Start.Y))
	}

	return result
}

// vehicleRadius mirrors the engine's collision proxy for a vehicle of the
// configured dimensions.
func vehicleRadius(spec engine.VehicleSpec) float64 {
	return engine.VehicleState{Width: spec.Width, Height: spec.Height}.CollisionRadius()
}

// obstacleCoverage returns the fraction of the world area covered by
// obstacles, ignoring overlap between them.
func obstacleCoverage(config *engine.ArenaConfig) float64 {
	var area float64
	for _, o := range config.Obstacles {
		area += o.Width * o.Height
	}
	return area / (config.WorldWidth * config.WorldHeight)
}

// validateReachability ensures the spot center is reachable from the start
// pose. The world is discretized into cells sized to the vehicle's collision
// radius; a cell is passable when the collision circle centered there clears
// every obstacle, and a flood fill over passable cells must connect the two
// poses. This is a conservative check on translation only: a config that
// fails it is certainly unparkable.
func validateReachability(config *engine.ArenaConfig, radius float64) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	cell := radius
	if cell <= 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Cannot validate reachability: degenerate vehicle dimensions")
		return result
	}

	cols := int(config.WorldWidth/cell) + 1
	rows := int(config.WorldHeight/cell) + 1

	isPassable := func(cx, cy int) bool {
		if cx < 0 || cy < 0 || cx >= cols || cy >= rows {
			return false
		}
		x := (float64(cx) + 0.5) * cell
		y := (float64(cy) + 0.5) * cell
		if x > config.WorldWidth || y > config.WorldHeight {
			return false
		}
		return engine.FirstObstacleHit(x, y, radius, config.Obstacles) == engine.NoObstacle
	}

	toCell := func(x, y float64) [2]int {
		return [2]int{int(x / cell), int(y / cell)}
	}

	start := toCell(config.Start.X, config.Start.Y)
	goal := toCell(config.Spot.X, config.Spot.Y)

	// Flood fill from the start cell
	visited := make(map[[2]int]bool)
	queue := [][2]int{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		directions := [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
		for _, dir := range directions {
			next := [2]int{current[0] + dir[0], current[1] + dir[1]}
			if !visited[next] && isPassable(next[0], next[1]) {
				queue = append(queue, next)
			}
		}
	}

	if !visited[goal] {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Reachability failure: spot at (%.0f, %.0f) cannot be reached from the start pose", config.Spot.X, config.Spot.Y))
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Reachability: spot reachable from start (%d cells explored)", len(visited)))
	}

	return result
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
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
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
