package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine provides the main interface for simulation operations
type Engine interface {
	// Simulation
	Step(input InputSnapshot, dt float64) StepResult
	Reset(manualRetry bool) Snapshot

	// State access
	Snapshot() Snapshot
	Status() RoundStatus
	Stats() RoundStats
	Vehicle() VehicleState
	Arena() Arena

	// History
	Rounds() []RoundRecord

	// Persistence
	SavedState() SavedState
	RestoreSavedState(sv SavedState) error

	// Configuration
	Config() *ArenaConfig
}

// ParkingEngine implements the Engine interface. All methods are safe for
// concurrent use: the frame loop steps while API handlers read snapshots.
type ParkingEngine struct {
	config *ArenaConfig
	arena  Arena

	mu              sync.Mutex
	vehicle         VehicleState
	status          RoundStatus
	stats           RoundStats
	crashedObstacle int
	rounds          []RoundRecord
}

// NewEngine creates a new parking engine for the provided arena configuration
func NewEngine(config *ArenaConfig) (*ParkingEngine, error) {
	if err := ValidateArenaConfig(config); err != nil {
		return nil, err
	}

	e := &ParkingEngine{
		config: config,
		arena:  BuildArena(config),
	}
	e.restoreStartPoseLocked()

	return e, nil
}

// NewEngineWithDefaults creates a new parking engine with the built-in arena
func NewEngineWithDefaults() *ParkingEngine {
	e, err := NewEngine(DefaultArenaConfig())
	if err != nil {
		// The built-in config is always valid.
		panic(fmt.Sprintf("default arena config invalid: %v", err))
	}
	return e
}

// BuildArena constructs the immutable arena geometry from a config.
// The obstacle slice is copied so later config mutation cannot leak in.
func BuildArena(config *ArenaConfig) Arena {
	obstacles := make([]Obstacle, len(config.Obstacles))
	copy(obstacles, config.Obstacles)
	return Arena{
		Width:     config.WorldWidth,
		Height:    config.WorldHeight,
		Obstacles: obstacles,
		Spot:      config.Spot,
	}
}

// restoreStartPoseLocked puts the vehicle back at the configured start pose.
// Callers must hold e.mu (or be inside the constructor).
func (e *ParkingEngine) restoreStartPoseLocked() {
	e.vehicle = VehicleState{
		X:      e.config.Start.X,
		Y:      e.config.Start.Y,
		Width:  e.config.Vehicle.Width,
		Height: e.config.Vehicle.Height,
		Angle:  e.config.Start.Angle,
	}
	e.status = StatusInProgress
	e.crashedObstacle = NoObstacle
	e.stats.ElapsedTime = 0
}

// Reset returns the round to its initial state: vehicle at the start pose,
// clock at zero, status in progress. Attempts is incremented only for manual
// retries, never for the initial construction or programmatic restarts.
func (e *ParkingEngine) Reset(manualRetry bool) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.restoreStartPoseLocked()
	if manualRetry {
		e.stats.Attempts++
	}

	return e.snapshotLocked()
}

// Snapshot returns an immutable copy of the current simulation state
func (e *ParkingEngine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *ParkingEngine) snapshotLocked() Snapshot {
	return Snapshot{
		Vehicle:         e.vehicle,
		Status:          e.status,
		Stats:           e.stats,
		CrashedObstacle: e.crashedObstacle,
		ConfigName:      e.config.Name,
	}
}

// Status returns the current round status
func (e *ParkingEngine) Status() RoundStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Stats returns the current round stats
func (e *ParkingEngine) Stats() RoundStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Vehicle returns a copy of the current vehicle state
func (e *ParkingEngine) Vehicle() VehicleState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vehicle
}

// Arena returns the immutable arena geometry
func (e *ParkingEngine) Arena() Arena {
	return e.arena
}

// Config returns the arena configuration the engine was built from
func (e *ParkingEngine) Config() *ArenaConfig {
	return e.config
}

// Rounds returns a copy of the cumulative round history. The history is
// preserved across resets.
func (e *ParkingEngine) Rounds() []RoundRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	rounds := make([]RoundRecord, len(e.rounds))
	copy(rounds, e.rounds)
	return rounds
}

// recordRoundLocked appends a history entry for a round that just reached a
// terminal status. Callers must hold e.mu.
func (e *ParkingEngine) recordRoundLocked() {
	e.rounds = append(e.rounds, RoundRecord{
		ID:              uuid.NewString(),
		Outcome:         e.status,
		ElapsedTime:     e.stats.ElapsedTime,
		Attempt:         e.stats.Attempts,
		CrashedObstacle: e.crashedObstacle,
		FinishedAt:      time.Now().Unix(),
	})
}

// SavedState returns the serializable simulation state for persistence
func (e *ParkingEngine) SavedState() SavedState {
	e.mu.Lock()
	defer e.mu.Unlock()

	rounds := make([]RoundRecord, len(e.rounds))
	copy(rounds, e.rounds)

	return SavedState{
		Vehicle:         e.vehicle,
		Status:          e.status,
		Stats:           e.stats,
		CrashedObstacle: e.crashedObstacle,
		Rounds:          rounds,
	}
}

// RestoreSavedState loads a previously persisted simulation state
func (e *ParkingEngine) RestoreSavedState(sv SavedState) error {
	switch sv.Status {
	case StatusInProgress, StatusSucceeded, StatusCrashed:
	default:
		return fmt.Errorf("invalid round status %q", sv.Status)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.vehicle = sv.Vehicle
	e.status = sv.Status
	e.stats = sv.Stats
	e.crashedObstacle = sv.CrashedObstacle
	e.rounds = make([]RoundRecord, len(sv.Rounds))
	copy(e.rounds, sv.Rounds)

	return nil
}
