// Command analyze prints quick, human-readable heuristics about arena
// configuration files in the project's configs directory. It summarizes world
// dimensions, obstacle coverage, the straight-line run from the start pose to
// the spot, and a lower bound on the time needed to park. With --solve it
// also runs the autopilot to estimate how hard the arena actually is.
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/parkbay/parkbay/autopilot"
	"github.com/parkbay/parkbay/game/engine"
)

// ArenaReport holds the computed heuristics for one arena file.
type ArenaReport struct {
	File          string
	Name          string
	WorldWidth    float64
	WorldHeight   float64
	ObstacleCount int
	Coverage      float64 // fraction of world area covered by obstacles
	StartToSpot   float64 // straight-line distance, start pose to spot center
	MinTime       float64 // lower bound in seconds, full-speed straight run
}

// buildReport computes the heuristics for a validated arena config.
func buildReport(file string, config *engine.ArenaConfig) ArenaReport {
	var area float64
	for _, o := range config.Obstacles {
		area += o.Width * o.Height
	}

	dist := math.Hypot(config.Spot.X-config.Start.X, config.Spot.Y-config.Start.Y)

	return ArenaReport{
		File:          filepath.Base(file),
		Name:          config.Name,
		WorldWidth:    config.WorldWidth,
		WorldHeight:   config.WorldHeight,
		ObstacleCount: len(config.Obstacles),
		Coverage:      area / (config.WorldWidth * config.WorldHeight),
		StartToSpot:   dist,
		MinTime:       minParkTime(dist, config.Vehicle),
	}
}

// minParkTime is a lower bound on the parking time: accelerate flat out along
// the straight line to the spot, ignoring obstacles, then arrive at exactly
// the parking speed limit. No real run can beat it.
func minParkTime(dist float64, spec engine.VehicleSpec) float64 {
	accelDist := spec.MaxSpeed * spec.MaxSpeed / (2 * spec.AccelRate)
	if accelDist >= dist {
		// Never reaches max speed
		return math.Sqrt(2 * dist / spec.AccelRate)
	}

	accelTime := spec.MaxSpeed / spec.AccelRate
	cruiseTime := (dist - accelDist) / spec.MaxSpeed
	return accelTime + cruiseTime
}

func printReport(r ArenaReport) {
	fmt.Printf("\n=== %s ===\n", r.File)
	fmt.Printf("Name: %s\n", r.Name)
	fmt.Printf("World: %.0f x %.0f\n", r.WorldWidth, r.WorldHeight)
	fmt.Printf("Obstacles: %d (%.1f%% coverage)\n", r.ObstacleCount, r.Coverage*100)
	fmt.Printf("Start to spot: %.1f units\n", r.StartToSpot)
	fmt.Printf("Minimum park time (straight line, no obstacles): %.2fs\n", r.MinTime)
}

func analyzeFile(path string, solve bool) error {
	config, err := engine.LoadArenaConfig(path)
	if err != nil {
		return err
	}

	printReport(buildReport(path, config))

	if solve {
		result, err := autopilot.Solve(config, autopilot.Options{})
		if errors.Is(err, autopilot.ErrNoSolution) {
			fmt.Printf("Autopilot: no parking sequence found — the arena may need a human\n")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("Autopilot: parked in %.2fs (%d frames, %d control segments)\n",
			result.Elapsed, result.Frames, len(result.Script))
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "print difficulty heuristics for arena configuration files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "configs",
				Value: "configs",
				Usage: "directory containing arena JSON files",
			},
			&cli.BoolFlag{
				Name:  "solve",
				Usage: "run the autopilot against each arena to estimate real difficulty",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("configs")
			solve := cmd.Bool("solve")

			files, err := filepath.Glob(filepath.Join(dir, "*.json"))
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no arena files found in %s", dir)
			}

			for _, file := range files {
				if err := analyzeFile(file, solve); err != nil {
					fmt.Printf("\n=== %s ===\nError: %v\n", filepath.Base(file), err)
				}
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
