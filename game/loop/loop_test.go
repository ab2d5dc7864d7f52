package loop

import (
	"sync"
	"testing"
	"time"

	"github.com/parkbay/parkbay/game/engine"
	"github.com/parkbay/parkbay/game/input"
)

func createTestEngine(t *testing.T) *engine.ParkingEngine {
	t.Helper()
	config := engine.DefaultArenaConfig()
	sim, err := engine.NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return sim
}

func TestLoop_Advance(t *testing.T) {
	sim := createTestEngine(t)
	adapter := input.NewAdapter()
	l := NewLoop(sim, adapter)

	adapter.SetControl(input.ControlAccelerate, true)

	snap, err := l.Advance(20, 0.05)
	if err != nil {
		t.Fatalf("Failed to advance: %v", err)
	}

	if snap.Vehicle.Velocity <= 0 {
		t.Errorf("Expected positive velocity after accelerating, got %g", snap.Vehicle.Velocity)
	}
	if snap.Stats.ElapsedTime < 0.999 || snap.Stats.ElapsedTime > 1.001 {
		t.Errorf("Expected ~1.0s of simulated time, got %g", snap.Stats.ElapsedTime)
	}
}

func TestLoop_Advance_Limits(t *testing.T) {
	sim := createTestEngine(t)
	l := NewLoop(sim, input.NewAdapter())

	if _, err := l.Advance(0, 0.05); err == nil {
		t.Error("Expected error for zero frames")
	}
	if _, err := l.Advance(-5, 0.05); err == nil {
		t.Error("Expected error for negative frames")
	}
	if _, err := l.Advance(MaxAdvanceFrames+1, 0.05); err != ErrTooManyFrames {
		t.Errorf("Expected ErrTooManyFrames, got %v", err)
	}
}

func TestLoop_RestartEdgeDetection(t *testing.T) {
	sim := createTestEngine(t)
	adapter := input.NewAdapter()
	l := NewLoop(sim, adapter)

	// Move away from the start pose, then hold restart across several frames.
	adapter.SetControl(input.ControlAccelerate, true)
	l.Advance(20, 0.05)
	adapter.SetControl(input.ControlAccelerate, false)
	adapter.SetControl(input.ControlRestart, true)

	l.Advance(5, 0.05)
	if got := sim.Stats().Attempts; got != 1 {
		t.Errorf("Expected exactly 1 attempt from a held restart key, got %d", got)
	}

	// Release and press again: a second edge, a second attempt.
	adapter.SetControl(input.ControlRestart, false)
	l.Advance(1, 0.05)
	adapter.SetControl(input.ControlRestart, true)
	l.Advance(3, 0.05)

	if got := sim.Stats().Attempts; got != 2 {
		t.Errorf("Expected 2 attempts after a second restart press, got %d", got)
	}
}

func TestLoop_StartStop(t *testing.T) {
	sim := createTestEngine(t)
	adapter := input.NewAdapter()

	var mu sync.Mutex
	frames := 0
	l := NewLoop(sim, adapter,
		WithTickRate(200),
		WithFrameFunc(func(engine.Snapshot) {
			mu.Lock()
			frames++
			mu.Unlock()
		}),
	)

	if err := l.Start(); err != nil {
		t.Fatalf("Failed to start loop: %v", err)
	}
	if !l.Running() {
		t.Error("Expected loop to report running")
	}

	// Starting twice is rejected.
	if err := l.Start(); err != ErrLoopRunning {
		t.Errorf("Expected ErrLoopRunning on double start, got %v", err)
	}

	// Advance is rejected while the ticker drives the engine.
	if _, err := l.Advance(1, 0.05); err != ErrLoopRunning {
		t.Errorf("Expected ErrLoopRunning from Advance while running, got %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	l.Stop()

	if l.Running() {
		t.Error("Expected loop to report stopped")
	}

	mu.Lock()
	after := frames
	mu.Unlock()
	if after == 0 {
		t.Error("Expected at least one frame callback while running")
	}

	// No frames are stepped after Stop returns.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	final := frames
	mu.Unlock()
	if final != after {
		t.Errorf("Expected no frames after Stop, %d -> %d", after, final)
	}

	// Stop is idempotent.
	l.Stop()
}

func TestLoop_StopThenAdvance(t *testing.T) {
	sim := createTestEngine(t)
	adapter := input.NewAdapter()
	l := NewLoop(sim, adapter, WithTickRate(200))

	if err := l.Start(); err != nil {
		t.Fatalf("Failed to start loop: %v", err)
	}
	l.Stop()

	if _, err := l.Advance(5, 0.05); err != nil {
		t.Errorf("Expected Advance to work after Stop, got %v", err)
	}
}

func TestLoop_ElapsedTimeBoundedByClamp(t *testing.T) {
	sim := createTestEngine(t)
	adapter := input.NewAdapter()
	l := NewLoop(sim, adapter, WithTickRate(100))

	if err := l.Start(); err != nil {
		t.Fatalf("Failed to start loop: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	l.Stop()

	// Even with scheduler jitter, simulated time can never exceed frames x
	// MaxDeltaTime, and some time must have passed.
	elapsed := sim.Stats().ElapsedTime
	if elapsed <= 0 {
		t.Error("Expected simulated time to advance while running")
	}
	if elapsed > 2.0 {
		t.Errorf("Simulated time %g implausibly large for a 200ms run", elapsed)
	}
}
