package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// ValidateArenaConfig validates an arena configuration for correctness and
// playability. Degenerate geometry is a configuration error caught here,
// never a runtime concern of the simulation step.
func ValidateArenaConfig(config *ArenaConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config cannot be nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.WorldWidth < MinWorldSize || config.WorldWidth > MaxWorldSize {
		return fmt.Errorf("config validation: world_width must be between %d and %d, got %g", MinWorldSize, MaxWorldSize, config.WorldWidth)
	}
	if config.WorldHeight < MinWorldSize || config.WorldHeight > MaxWorldSize {
		return fmt.Errorf("config validation: world_height must be between %d and %d, got %g", MinWorldSize, MaxWorldSize, config.WorldHeight)
	}

	if err := validateVehicleSpec(config.Vehicle); err != nil {
		return err
	}

	if len(config.Obstacles) > MaxObstacles {
		return fmt.Errorf("config validation: at most %d obstacles allowed, got %d", MaxObstacles, len(config.Obstacles))
	}
	for i, o := range config.Obstacles {
		if o.Width <= 0 || o.Height <= 0 {
			return fmt.Errorf("config validation: obstacle %d has non-positive size %gx%g", i, o.Width, o.Height)
		}
		if o.X < 0 || o.Y < 0 || o.X+o.Width > config.WorldWidth || o.Y+o.Height > config.WorldHeight {
			return fmt.Errorf("config validation: obstacle %d extends outside the world bounds", i)
		}
	}

	spot := config.Spot
	if spot.Width <= 0 || spot.Height <= 0 {
		return fmt.Errorf("config validation: spot has non-positive size %gx%g", spot.Width, spot.Height)
	}
	if spot.X < 0 || spot.Y < 0 || spot.X > config.WorldWidth || spot.Y > config.WorldHeight {
		return fmt.Errorf("config validation: spot center (%g, %g) is outside the world bounds", spot.X, spot.Y)
	}

	start := config.Start
	if start.X < 0 || start.Y < 0 || start.X > config.WorldWidth || start.Y > config.WorldHeight {
		return fmt.Errorf("config validation: start pose (%g, %g) is outside the world bounds", start.X, start.Y)
	}

	// The round must begin live: the start pose may not already intersect an
	// obstacle.
	probe := VehicleState{Width: config.Vehicle.Width, Height: config.Vehicle.Height}
	if hit := FirstObstacleHit(start.X, start.Y, probe.CollisionRadius(), config.Obstacles); hit != NoObstacle {
		return fmt.Errorf("config validation: start pose collides with obstacle %d", hit)
	}

	return nil
}

// validateVehicleSpec checks the physics parameters of the vehicle
func validateVehicleSpec(spec VehicleSpec) error {
	if spec.Width <= 0 || spec.Height <= 0 {
		return fmt.Errorf("config validation: vehicle size must be positive, got %gx%g", spec.Width, spec.Height)
	}
	if math.Hypot(spec.Width, spec.Height)/2 <= collisionSlack {
		return fmt.Errorf("config validation: vehicle footprint too small for the collision proxy")
	}
	if spec.MaxSpeed <= 0 {
		return fmt.Errorf("config validation: max_speed must be positive, got %g", spec.MaxSpeed)
	}
	if spec.AccelRate <= 0 {
		return fmt.Errorf("config validation: accel_rate must be positive, got %g", spec.AccelRate)
	}
	if spec.BrakeRate <= 0 {
		return fmt.Errorf("config validation: brake_rate must be positive, got %g", spec.BrakeRate)
	}
	if spec.DragRate <= 0 {
		return fmt.Errorf("config validation: drag_rate must be positive, got %g", spec.DragRate)
	}
	if spec.SteerStrength <= 0 {
		return fmt.Errorf("config validation: steer_strength must be positive, got %g", spec.SteerStrength)
	}
	if spec.ParkSpeedLimit <= 0 || spec.ParkSpeedLimit >= spec.MaxSpeed {
		return fmt.Errorf("config validation: park_speed_limit must be positive and below max_speed, got %g", spec.ParkSpeedLimit)
	}
	if spec.ParkAngleTolerance <= 0 || spec.ParkAngleTolerance > math.Pi/2 {
		return fmt.Errorf("config validation: park_angle_tolerance must be in (0, π/2], got %g", spec.ParkAngleTolerance)
	}
	return nil
}

// LoadArenaConfig reads and validates an arena configuration from a JSON file
func LoadArenaConfig(path string) (*ArenaConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config ArenaConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ValidateArenaConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultVehicleSpec returns the vehicle parameters used by the built-in
// arena: a sedan-sized footprint with arcade-feel rates.
func DefaultVehicleSpec() VehicleSpec {
	return VehicleSpec{
		Width:              48,
		Height:             24,
		MaxSpeed:           180,
		AccelRate:          120,
		BrakeRate:          220,
		DragRate:           90,
		SteerStrength:      2.6,
		ParkSpeedLimit:     10,
		ParkAngleTolerance: 0.25,
	}
}

// DefaultArenaConfig returns the built-in arena: a walled lot with two
// blocking islands and a perpendicular spot in the far corner.
func DefaultArenaConfig() *ArenaConfig {
	return &ArenaConfig{
		Name:        "classic",
		Description: "Walled lot with two islands and a perpendicular bay",
		WorldWidth:  900,
		WorldHeight: 600,
		Obstacles: []Obstacle{
			// Perimeter walls
			{X: 0, Y: 0, Width: 900, Height: 12},
			{X: 0, Y: 588, Width: 900, Height: 12},
			{X: 0, Y: 12, Width: 12, Height: 576},
			{X: 888, Y: 12, Width: 12, Height: 576},
			// Islands
			{X: 300, Y: 140, Width: 120, Height: 60},
			{X: 480, Y: 380, Width: 160, Height: 70},
		},
		Spot: ParkingSpot{
			X:      790,
			Y:      110,
			Width:  70,
			Height: 110,
			Angle:  math.Pi / 2,
		},
		Start: StartPose{
			X:     120,
			Y:     480,
			Angle: 0,
		},
		Vehicle: DefaultVehicleSpec(),
	}
}
