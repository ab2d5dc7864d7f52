package engine

import "math"

// Step advances the simulation by one frame. The timestep is clamped to
// [0, MaxDeltaTime] before use; a zero timestep is a no-op beyond returning
// the current state. While the round is terminal the step does nothing:
// physics and the clock stay frozen until Reset.
//
// Within a frame the order is fixed: time accrual, longitudinal dynamics,
// steering, position integration, collision test, goal test. The collision
// test runs first of the two outcome tests and takes precedence, so grazing
// an obstacle while inside the spot crashes rather than parks.
func (e *ParkingEngine) Step(input InputSnapshot, dt float64) StepResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if dt < 0 {
		dt = 0
	} else if dt > MaxDeltaTime {
		dt = MaxDeltaTime
	}

	if e.status != StatusInProgress {
		return e.resultLocked()
	}

	// The round was live at the start of this step, so its dt counts even if
	// the step below ends the round.
	e.stats.ElapsedTime += dt

	e.integrateLocked(input, dt)

	radius := e.vehicle.CollisionRadius()
	if hit := FirstObstacleHit(e.vehicle.X, e.vehicle.Y, radius, e.arena.Obstacles); hit != NoObstacle {
		e.crashedObstacle = hit
		e.status = StatusCrashed
		e.vehicle.Velocity = 0
		e.recordRoundLocked()
		return e.resultLocked()
	}

	if e.goalReachedLocked() {
		e.status = StatusSucceeded
		e.vehicle.Velocity = 0
		e.recordRoundLocked()
	}

	return e.resultLocked()
}

// integrateLocked applies longitudinal dynamics, steering, and position
// integration for one frame. Callers must hold e.mu.
func (e *ParkingEngine) integrateLocked(input InputSnapshot, dt float64) {
	v := &e.vehicle
	spec := e.config.Vehicle

	// Longitudinal dynamics: thrust and braking fight directly, drag applies
	// only while the player is coasting.
	if input.Accelerate {
		v.Velocity += spec.AccelRate * dt
	}
	if input.Brake {
		v.Velocity -= spec.BrakeRate * dt
	}
	v.Velocity = Clamp(v.Velocity, -spec.MaxSpeed, spec.MaxSpeed)

	if !input.Accelerate && !input.Brake {
		magnitude := math.Abs(v.Velocity) - spec.DragRate*dt
		if magnitude < velocityEpsilon {
			v.Velocity = 0
		} else if v.Velocity > 0 {
			v.Velocity = magnitude
		} else {
			v.Velocity = -magnitude
		}
	}

	// Steering authority scales with speed, so the vehicle cannot pivot in
	// place. Reversing flips the apparent steering direction.
	turn := 0.0
	if input.SteerLeft {
		turn++
	}
	if input.SteerRight {
		turn--
	}

	rate := turn * spec.SteerStrength * SpeedFraction(v.Velocity, spec.MaxSpeed)
	if v.Velocity < 0 {
		rate = -rate
	}
	v.SteerRate = rate
	v.Angle += rate * dt

	v.X += math.Cos(v.Angle) * v.Velocity * dt
	v.Y += math.Sin(v.Angle) * v.Velocity * dt
}

// goalReachedLocked evaluates the three parking gates: vehicle center inside
// the oriented spot rectangle, speed below the parking limit, and heading
// within tolerance of the spot angle. Center-point containment is the
// contract here: the full vehicle footprint is not required to fit.
func (e *ParkingEngine) goalReachedLocked() bool {
	v := e.vehicle
	spot := e.arena.Spot
	spec := e.config.Vehicle

	if !spot.Contains(v.X, v.Y) {
		return false
	}
	if math.Abs(v.Velocity) >= spec.ParkSpeedLimit {
		return false
	}
	return math.Abs(AngleDelta(v.Angle, spot.Angle)) < spec.ParkAngleTolerance
}

func (e *ParkingEngine) resultLocked() StepResult {
	return StepResult{
		Vehicle:         e.vehicle,
		Status:          e.status,
		CrashedObstacle: e.crashedObstacle,
	}
}
