// Package engine provides the core simulation logic for the Park Bay
// Simulator.
//
// The engine package implements the per-frame simulation step including:
//   - Longitudinal vehicle dynamics (thrust, braking, drag)
//   - Speed-scaled steering with reverse inversion
//   - Circle-vs-rectangle collision detection against static obstacles
//   - Parking goal evaluation (position, speed, and heading gates)
//   - Round lifecycle management and attempt tracking
//
// Core Types:
//
// The Engine interface defines the main contract for simulation operations,
// implemented by ParkingEngine. VehicleState holds the mutable vehicle pose,
// while ArenaConfig defines the arena geometry and vehicle physics
// parameters loaded from JSON files.
//
// Usage:
//
//	config := engine.DefaultArenaConfig()
//	sim, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Advance one frame
//	input := engine.InputSnapshot{Accelerate: true}
//	result := sim.Step(input, 1.0/60.0)
//	snap := sim.Snapshot()
//
// Simulation Rules:
//
// Players steer a vehicle into a marked parking spot while avoiding static
// obstacles. The round ends in success when the vehicle center is inside the
// spot, moving slowly, and aligned with the spot heading. Touching any
// obstacle crashes the vehicle and ends the round. Once a round is terminal,
// physics and the clock freeze until an explicit reset.
package engine
