// Package autopilot searches for control scripts that park the vehicle in a
// given arena. It runs a private engine instance offline, so a search never
// touches live sessions. Used by the analyze CLI to estimate arena difficulty
// and by tests that need a known-good parking sequence.
package autopilot

import (
	"errors"
	"fmt"
	"math"

	"github.com/parkbay/parkbay/game/engine"
)

// Segment is one piece of a piecewise-constant control script: the same
// controls held for Frames consecutive fixed-dt steps.
type Segment struct {
	Controls engine.InputSnapshot `json:"controls"`
	Frames   int                  `json:"frames"`
}

// Script is an ordered sequence of control segments.
type Script []Segment

// TotalFrames returns the number of simulation frames the script spans.
func (s Script) TotalFrames() int {
	total := 0
	for _, seg := range s {
		total += seg.Frames
	}
	return total
}

// Result describes a finished search.
type Result struct {
	Script  Script             `json:"script"`
	Frames  int                `json:"frames"`
	Elapsed float64            `json:"elapsed"`
	Outcome engine.RoundStatus `json:"outcome"`
}

// ErrNoSolution is returned when the search exhausts its frame budget
// without parking.
var ErrNoSolution = errors.New("no parking sequence found within the frame budget")

// Options tunes the search. Zero values fall back to defaults.
type Options struct {
	Dt            float64 // seconds per frame, default 1/60
	SegmentFrames int     // frames each candidate segment holds its controls, default 6
	MaxFrames     int     // total frame budget, default 7200 (two simulated minutes)
}

func (o Options) withDefaults() Options {
	if o.Dt <= 0 {
		o.Dt = 1.0 / 60.0
	}
	if o.SegmentFrames <= 0 {
		o.SegmentFrames = 6
	}
	if o.MaxFrames <= 0 {
		o.MaxFrames = 7200
	}
	return o
}

// candidateControls are the control combinations the search considers per
// segment. Conflicting pairs (both steers, both pedals) are omitted since
// the engine resolves them to a subset of these anyway.
var candidateControls = []engine.InputSnapshot{
	{},
	{Accelerate: true},
	{Accelerate: true, SteerLeft: true},
	{Accelerate: true, SteerRight: true},
	{Brake: true},
	{Brake: true, SteerLeft: true},
	{Brake: true, SteerRight: true},
	{SteerLeft: true},
	{SteerRight: true},
}

// Solve searches for a script that parks the vehicle in the arena described
// by config. The search is greedy over fixed-length segments: at each step it
// simulates every candidate control combination on a cloned engine, scores
// the resulting pose, and commits the best segment. Deterministic for a given
// config and options.
func Solve(config *engine.ArenaConfig, opts Options) (*Result, error) {
	if err := engine.ValidateArenaConfig(config); err != nil {
		return nil, fmt.Errorf("invalid arena: %w", err)
	}
	opts = opts.withDefaults()

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	var script Script
	frames := 0

	for frames < opts.MaxFrames {
		best := -1
		bestScore := math.Inf(1)

		saved := eng.SavedState()
		for i, controls := range candidateControls {
			score, parked := trySegment(eng, controls, opts)
			if err := eng.RestoreSavedState(saved); err != nil {
				return nil, err
			}
			if parked {
				best = i
				break
			}
			if score < bestScore {
				bestScore = score
				best = i
			}
		}

		// Every candidate crashed: nothing more to try from this pose.
		if best < 0 {
			break
		}

		controls := candidateControls[best]
		executed := 0
		for f := 0; f < opts.SegmentFrames; f++ {
			result := eng.Step(controls, opts.Dt)
			frames++
			executed++
			if result.Status != engine.StatusInProgress {
				break
			}
		}
		script = appendSegment(script, controls, executed)

		switch eng.Status() {
		case engine.StatusSucceeded:
			return &Result{
				Script:  script,
				Frames:  frames,
				Elapsed: eng.Stats().ElapsedTime,
				Outcome: engine.StatusSucceeded,
			}, nil
		case engine.StatusCrashed:
			return nil, ErrNoSolution
		}
	}

	return nil, ErrNoSolution
}

// trySegment simulates one candidate segment on eng and returns its score
// (lower is better) and whether it ended parked. The caller restores the
// engine state afterwards.
func trySegment(eng *engine.ParkingEngine, controls engine.InputSnapshot, opts Options) (float64, bool) {
	var result engine.StepResult
	for f := 0; f < opts.SegmentFrames; f++ {
		result = eng.Step(controls, opts.Dt)
		if result.Status != engine.StatusInProgress {
			break
		}
	}

	switch result.Status {
	case engine.StatusSucceeded:
		return 0, true
	case engine.StatusCrashed:
		return math.Inf(1), false
	}

	return scorePose(result.Vehicle, eng.Config()), false
}

// scorePose rates how promising a vehicle pose is. Distance to the spot
// center dominates; heading mismatch and excess speed matter progressively
// more as the vehicle closes in, because both must be shed before parking.
func scorePose(v engine.VehicleState, config *engine.ArenaConfig) float64 {
	spot := config.Spot
	dist := math.Hypot(spot.X-v.X, spot.Y-v.Y)

	proximity := 1.0 / (1.0 + dist/50.0)
	headingPenalty := math.Abs(engine.AngleDelta(v.Angle, spot.Angle)) * 40.0 * proximity
	speedPenalty := math.Max(0, math.Abs(v.Velocity)-config.Vehicle.ParkSpeedLimit) * 1.5 * proximity

	return dist + headingPenalty + speedPenalty
}

// appendSegment extends the last segment when the controls repeat, keeping
// scripts compact.
func appendSegment(script Script, controls engine.InputSnapshot, frames int) Script {
	if n := len(script); n > 0 && script[n-1].Controls == controls {
		script[n-1].Frames += frames
		return script
	}
	return append(script, Segment{Controls: controls, Frames: frames})
}

// Replay runs a script against a fresh engine for the same arena and returns
// the final snapshot. Useful for verifying that a found script actually
// parks.
func Replay(config *engine.ArenaConfig, script Script, dt float64) (engine.Snapshot, error) {
	if dt <= 0 {
		dt = 1.0 / 60.0
	}
	eng, err := engine.NewEngine(config)
	if err != nil {
		return engine.Snapshot{}, err
	}

	for _, seg := range script {
		for f := 0; f < seg.Frames; f++ {
			if result := eng.Step(seg.Controls, dt); result.Status != engine.StatusInProgress {
				return eng.Snapshot(), nil
			}
		}
	}
	return eng.Snapshot(), nil
}
