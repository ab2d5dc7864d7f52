package engine

import (
	"math"
	"testing"
)

func mustEngine(t *testing.T, config *ArenaConfig) *ParkingEngine {
	t.Helper()
	sim, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return sim
}

func TestStep_VelocityAlwaysClamped(t *testing.T) {
	config := createTestConfig()
	config.Obstacles = nil // open field, nothing to crash into
	sim := mustEngine(t, config)

	inputs := []InputSnapshot{
		{Accelerate: true},
		{Brake: true},
		{Accelerate: true, Brake: true},
		{Accelerate: true, SteerLeft: true},
		{Brake: true, SteerRight: true},
		{},
	}
	dts := []float64{0, 0.001, 1.0 / 60.0, 0.05, 0.5, -1}

	for i := 0; i < 2000; i++ {
		input := inputs[i%len(inputs)]
		dt := dts[i%len(dts)]
		result := sim.Step(input, dt)

		max := config.Vehicle.MaxSpeed
		if result.Vehicle.Velocity < -max || result.Vehicle.Velocity > max {
			t.Fatalf("Velocity %g escaped [-%g, %g] on step %d", result.Vehicle.Velocity, max, max, i)
		}
	}
}

func TestStep_AtRestWithNoInputStaysExactlyZero(t *testing.T) {
	sim := mustEngine(t, createTestConfig())

	start := sim.Vehicle()
	for i := 0; i < 500; i++ {
		result := sim.Step(InputSnapshot{}, 1.0/60.0)
		if result.Vehicle.Velocity != 0 {
			t.Fatalf("Expected velocity exactly 0 at rest, got %g on step %d", result.Vehicle.Velocity, i)
		}
	}

	end := sim.Vehicle()
	if end.X != start.X || end.Y != start.Y {
		t.Errorf("Expected no drift at rest, moved from (%g, %g) to (%g, %g)",
			start.X, start.Y, end.X, end.Y)
	}
}

func TestStep_ZeroAndNegativeDtAreNoOps(t *testing.T) {
	sim := mustEngine(t, createTestConfig())

	// Get moving first.
	sim.Step(InputSnapshot{Accelerate: true}, 0.05)
	before := sim.Vehicle()
	elapsed := sim.Stats().ElapsedTime

	sim.Step(InputSnapshot{Accelerate: true}, 0)
	sim.Step(InputSnapshot{Accelerate: true}, -0.5)

	after := sim.Vehicle()
	if after.X != before.X || after.Y != before.Y || after.Velocity != before.Velocity {
		t.Errorf("Expected zero/negative dt to leave motion unchanged, %+v -> %+v", before, after)
	}
	if sim.Stats().ElapsedTime != elapsed {
		t.Errorf("Expected zero/negative dt to leave the clock unchanged, %g -> %g",
			elapsed, sim.Stats().ElapsedTime)
	}
}

// TestStep_AccelerationTrajectory replays the integration formula with the
// same clamped dt the engine uses and demands exact equality. 20 calls at
// dt=0.1 all clamp to 0.05 for one second of simulated time, ending at
// min(120*1.0, 180) = 120 units/s.
func TestStep_AccelerationTrajectory(t *testing.T) {
	config := createTestConfig()
	config.Obstacles = nil
	sim := mustEngine(t, config)

	expectedVel := 0.0
	expectedX := config.Start.X
	expectedTime := 0.0
	const clampedDt = MaxDeltaTime

	for i := 0; i < 20; i++ {
		result := sim.Step(InputSnapshot{Accelerate: true}, 0.1)

		expectedTime += clampedDt
		expectedVel = Clamp(expectedVel+config.Vehicle.AccelRate*clampedDt, -config.Vehicle.MaxSpeed, config.Vehicle.MaxSpeed)
		// Heading stays 0 without steering, so only X advances.
		expectedX += math.Cos(0) * expectedVel * clampedDt

		if result.Vehicle.Velocity != expectedVel {
			t.Fatalf("Step %d: expected velocity %v, got %v", i, expectedVel, result.Vehicle.Velocity)
		}
		if result.Vehicle.X != expectedX {
			t.Fatalf("Step %d: expected x %v, got %v", i, expectedX, result.Vehicle.X)
		}
	}

	if math.Abs(expectedVel-120) > 1e-9 {
		t.Errorf("Expected ~120 units/s after 1.0s of acceleration, got %v", expectedVel)
	}
	if sim.Stats().ElapsedTime != expectedTime {
		t.Errorf("Expected elapsed time %v, got %v", expectedTime, sim.Stats().ElapsedTime)
	}
}

func TestStep_DragSnapsToExactZero(t *testing.T) {
	config := createTestConfig()
	config.Obstacles = nil
	sim := mustEngine(t, config)

	// Build up some speed, then coast.
	for i := 0; i < 10; i++ {
		sim.Step(InputSnapshot{Accelerate: true}, 0.05)
	}
	if sim.Vehicle().Velocity <= 0 {
		t.Fatal("Expected positive velocity after accelerating")
	}

	for i := 0; i < 500; i++ {
		result := sim.Step(InputSnapshot{}, 0.05)
		if result.Vehicle.Velocity == 0 {
			return
		}
	}
	t.Errorf("Expected drag to stop the vehicle exactly, still at %g", sim.Vehicle().Velocity)
}

func TestStep_NoPivotInPlace(t *testing.T) {
	sim := mustEngine(t, createTestConfig())

	for i := 0; i < 100; i++ {
		result := sim.Step(InputSnapshot{SteerLeft: true}, 1.0/60.0)
		if result.Vehicle.Angle != 0 {
			t.Fatalf("Expected no turning at rest, heading became %g", result.Vehicle.Angle)
		}
	}
}

func TestStep_SteeringDirectionAndCancel(t *testing.T) {
	config := createTestConfig()
	config.Obstacles = nil

	// Left turn increases the heading while moving forward.
	sim := mustEngine(t, config)
	for i := 0; i < 20; i++ {
		sim.Step(InputSnapshot{Accelerate: true, SteerLeft: true}, 0.05)
	}
	if sim.Vehicle().Angle <= 0 {
		t.Errorf("Expected heading to increase steering left, got %g", sim.Vehicle().Angle)
	}

	// Right turn decreases it.
	sim = mustEngine(t, config)
	for i := 0; i < 20; i++ {
		sim.Step(InputSnapshot{Accelerate: true, SteerRight: true}, 0.05)
	}
	if sim.Vehicle().Angle >= 0 {
		t.Errorf("Expected heading to decrease steering right, got %g", sim.Vehicle().Angle)
	}

	// Both pressed cancel out.
	sim = mustEngine(t, config)
	for i := 0; i < 20; i++ {
		sim.Step(InputSnapshot{Accelerate: true, SteerLeft: true, SteerRight: true}, 0.05)
	}
	if sim.Vehicle().Angle != 0 {
		t.Errorf("Expected heading unchanged with both steer controls held, got %g", sim.Vehicle().Angle)
	}
}

func TestStep_ReversingInvertsSteering(t *testing.T) {
	config := createTestConfig()
	config.Obstacles = nil
	sim := mustEngine(t, config)

	// Brake from rest to reverse, then steer left: heading must decrease,
	// mirroring how backing up flips the apparent steering direction.
	for i := 0; i < 10; i++ {
		sim.Step(InputSnapshot{Brake: true}, 0.05)
	}
	if sim.Vehicle().Velocity >= 0 {
		t.Fatalf("Expected negative velocity while reversing, got %g", sim.Vehicle().Velocity)
	}

	for i := 0; i < 20; i++ {
		sim.Step(InputSnapshot{Brake: true, SteerLeft: true}, 0.05)
	}
	if sim.Vehicle().Angle >= 0 {
		t.Errorf("Expected heading to decrease steering left in reverse, got %g", sim.Vehicle().Angle)
	}
}

func TestStep_CrashFreezesSimulation(t *testing.T) {
	config := createTestConfig()
	config.Obstacles = []Obstacle{{X: 200, Y: 250, Width: 40, Height: 100}}
	sim := mustEngine(t, config)

	for i := 0; i < 200 && sim.Status() == StatusInProgress; i++ {
		sim.Step(InputSnapshot{Accelerate: true}, 0.05)
	}
	if sim.Status() != StatusCrashed {
		t.Fatalf("Expected crash, got %q", sim.Status())
	}

	crashed := sim.Vehicle()
	if crashed.Velocity != 0 {
		t.Errorf("Expected velocity forced to 0 on crash, got %g", crashed.Velocity)
	}
	elapsed := sim.Stats().ElapsedTime

	// Further steps are frozen: no integration, no time.
	for i := 0; i < 50; i++ {
		result := sim.Step(InputSnapshot{Accelerate: true, SteerLeft: true}, 0.05)
		if result.Status != StatusCrashed {
			t.Fatalf("Expected status to stay %q, got %q", StatusCrashed, result.Status)
		}
	}
	after := sim.Vehicle()
	if after.X != crashed.X || after.Y != crashed.Y || after.Velocity != 0 {
		t.Errorf("Expected frozen vehicle after crash, %+v -> %+v", crashed, after)
	}
	if sim.Stats().ElapsedTime != elapsed {
		t.Errorf("Expected frozen clock after crash, %g -> %g", elapsed, sim.Stats().ElapsedTime)
	}

	// Reset thaws the simulation.
	sim.Reset(true)
	if sim.Status() != StatusInProgress {
		t.Errorf("Expected %q after reset, got %q", StatusInProgress, sim.Status())
	}
}

func TestStep_ImmediateSuccessAtSpotCenter(t *testing.T) {
	config := createTestConfig()
	// Start exactly at the spot center, aligned, at rest.
	config.Start = StartPose{X: config.Spot.X, Y: config.Spot.Y, Angle: config.Spot.Angle}
	sim := mustEngine(t, config)

	result := sim.Step(InputSnapshot{}, 1.0/60.0)
	if result.Status != StatusSucceeded {
		t.Fatalf("Expected %q parked at the spot center, got %q", StatusSucceeded, result.Status)
	}
	if result.Vehicle.Velocity != 0 {
		t.Errorf("Expected velocity 0 on success, got %g", result.Vehicle.Velocity)
	}

	rounds := sim.Rounds()
	if len(rounds) != 1 || rounds[0].Outcome != StatusSucceeded {
		t.Errorf("Expected one succeeded round record, got %+v", rounds)
	}
}

func TestStep_SuccessFreezesSimulation(t *testing.T) {
	config := createTestConfig()
	config.Start = StartPose{X: config.Spot.X, Y: config.Spot.Y, Angle: config.Spot.Angle}
	sim := mustEngine(t, config)

	sim.Step(InputSnapshot{}, 1.0/60.0)
	if sim.Status() != StatusSucceeded {
		t.Fatalf("Expected success, got %q", sim.Status())
	}
	parked := sim.Vehicle()
	elapsed := sim.Stats().ElapsedTime

	for i := 0; i < 50; i++ {
		sim.Step(InputSnapshot{Accelerate: true}, 0.05)
	}
	if sim.Vehicle() != parked {
		t.Errorf("Expected frozen vehicle after success, %+v -> %+v", parked, sim.Vehicle())
	}
	if sim.Stats().ElapsedTime != elapsed {
		t.Errorf("Expected frozen clock after success, %g -> %g", elapsed, sim.Stats().ElapsedTime)
	}
}

func TestStep_GoalRejectedWhenTooFast(t *testing.T) {
	config := createTestConfig()
	config.Obstacles = nil
	// Spot directly down the start heading so the vehicle blows through it.
	config.Spot = ParkingSpot{X: 500, Y: 300, Width: 80, Height: 120, Angle: 0}
	sim := mustEngine(t, config)

	crossed := false
	for i := 0; i < 200; i++ {
		result := sim.Step(InputSnapshot{Accelerate: true}, 0.05)
		if result.Status == StatusSucceeded {
			t.Fatalf("Parked at %g units/s, above the %g limit",
				result.Vehicle.Velocity, config.Vehicle.ParkSpeedLimit)
		}
		if config.Spot.Contains(result.Vehicle.X, result.Vehicle.Y) {
			crossed = true
		}
	}
	if !crossed {
		t.Fatal("Test never drove the vehicle through the spot")
	}
}

func TestStep_GoalRejectedWhenMisaligned(t *testing.T) {
	config := createTestConfig()
	// At the spot center and at rest, but heading off by more than tolerance.
	config.Start = StartPose{
		X:     config.Spot.X,
		Y:     config.Spot.Y,
		Angle: config.Spot.Angle + config.Vehicle.ParkAngleTolerance + 0.1,
	}
	sim := mustEngine(t, config)

	result := sim.Step(InputSnapshot{}, 1.0/60.0)
	if result.Status != StatusInProgress {
		t.Errorf("Expected misaligned vehicle to stay %q, got %q", StatusInProgress, result.Status)
	}
}

// TestStep_CollisionTakesPrecedenceOverGoal constructs a pose that satisfies
// the parking gates and intersects an obstacle at the same time. The crash
// must win.
func TestStep_CollisionTakesPrecedenceOverGoal(t *testing.T) {
	config := createTestConfig()
	// Obstacle covering the spot center.
	config.Obstacles = []Obstacle{{
		X:      config.Spot.X - 20,
		Y:      config.Spot.Y - 20,
		Width:  40,
		Height: 40,
	}}
	sim := mustEngine(t, config)

	// Teleport into the conflicted pose: inside the spot, aligned, at rest,
	// and overlapping the obstacle.
	err := sim.RestoreSavedState(SavedState{
		Vehicle: VehicleState{
			X:      config.Spot.X,
			Y:      config.Spot.Y,
			Width:  config.Vehicle.Width,
			Height: config.Vehicle.Height,
			Angle:  config.Spot.Angle,
		},
		Status:          StatusInProgress,
		CrashedObstacle: NoObstacle,
	})
	if err != nil {
		t.Fatalf("Failed to restore conflicted state: %v", err)
	}

	result := sim.Step(InputSnapshot{}, 1.0/60.0)
	if result.Status != StatusCrashed {
		t.Fatalf("Expected collision to take precedence over the goal, got %q", result.Status)
	}
	if result.CrashedObstacle != 0 {
		t.Errorf("Expected crashed obstacle index 0, got %d", result.CrashedObstacle)
	}
}

func TestStep_ElapsedTimeCountsTheEndingFrame(t *testing.T) {
	config := createTestConfig()
	config.Start = StartPose{X: config.Spot.X, Y: config.Spot.Y, Angle: config.Spot.Angle}
	sim := mustEngine(t, config)

	// The round was live at the start of this step, so its dt is on the
	// clock even though the step ends the round.
	sim.Step(InputSnapshot{}, 0.05)
	if sim.Status() != StatusSucceeded {
		t.Fatalf("Expected success, got %q", sim.Status())
	}
	if got := sim.Stats().ElapsedTime; got != 0.05 {
		t.Errorf("Expected elapsed time 0.05 after the ending frame, got %g", got)
	}
}
