package engine

// RoundStatus represents the lifecycle state of a parking round
type RoundStatus string

const (
	StatusInProgress RoundStatus = "in_progress"
	StatusSucceeded  RoundStatus = "succeeded"
	StatusCrashed    RoundStatus = "crashed"

	// MaxDeltaTime caps the per-frame timestep so frame hitches do not blow
	// up the integration (seconds).
	MaxDeltaTime = 0.05

	// velocityEpsilon is the speed below which drag snaps the vehicle to an
	// exact stop, preventing perpetual creep (units/second).
	velocityEpsilon = 0.5

	// collisionSlack shrinks the vehicle's bounding-circle radius slightly so
	// the proxy circle hugs the body instead of its corners (units).
	collisionSlack = 2.0

	// NoObstacle is the obstacle index reported when no collision occurred.
	NoObstacle = -1

	// Validation constants
	MinWorldSize = 100
	MaxWorldSize = 10000
	MaxObstacles = 256
)

// Obstacle is a static axis-aligned blocking rectangle in world units.
// X,Y is the top-left corner.
type Obstacle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ParkingSpot is the goal rectangle. X,Y is the spot center and Angle is the
// heading (radians) the vehicle must match to park.
type ParkingSpot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle"`
}

// StartPose is the fixed pose the vehicle is restored to on every reset.
type StartPose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

// Arena is the immutable playable region: world bounds, obstacles, and the
// parking spot. Built once from an ArenaConfig and never mutated afterwards.
type Arena struct {
	Width     float64     `json:"width"`
	Height    float64     `json:"height"`
	Obstacles []Obstacle  `json:"obstacles"`
	Spot      ParkingSpot `json:"spot"`
}

// VehicleState is the mutable vehicle pose and motion state. X,Y is the
// vehicle center; Velocity is a signed scalar along the heading (positive =
// forward); SteerRate is the heading rate applied on the last step
// (radians/second, recomputed every frame).
type VehicleState struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Angle     float64 `json:"angle"`
	Velocity  float64 `json:"velocity"`
	SteerRate float64 `json:"steer_rate"`
}

// RoundStats tracks timing and retry counts for the current session.
// ElapsedTime accumulates only while the round is in progress; Attempts
// counts explicit manual retries, not the initial start.
type RoundStats struct {
	ElapsedTime float64 `json:"elapsed_time"`
	Attempts    int     `json:"attempts"`
}

// InputSnapshot is one consistent per-frame sample of the five logical
// controls. Source-agnostic: keyboard, touch, and API clients all map onto
// these booleans.
type InputSnapshot struct {
	Accelerate bool `json:"accelerate"`
	Brake      bool `json:"brake"`
	SteerLeft  bool `json:"steer_left"`
	SteerRight bool `json:"steer_right"`
	Restart    bool `json:"restart"`
}

// VehicleSpec holds the vehicle physics parameters for an arena.
type VehicleSpec struct {
	Width              float64 `json:"width"`
	Height             float64 `json:"height"`
	MaxSpeed           float64 `json:"max_speed"`
	AccelRate          float64 `json:"accel_rate"`
	BrakeRate          float64 `json:"brake_rate"`
	DragRate           float64 `json:"drag_rate"`
	SteerStrength      float64 `json:"steer_strength"`
	ParkSpeedLimit     float64 `json:"park_speed_limit"`
	ParkAngleTolerance float64 `json:"park_angle_tolerance"`
}

// ArenaConfig represents an arena definition loaded from JSON
type ArenaConfig struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	WorldWidth  float64     `json:"world_width"`
	WorldHeight float64     `json:"world_height"`
	Obstacles   []Obstacle  `json:"obstacles"`
	Spot        ParkingSpot `json:"spot"`
	Start       StartPose   `json:"start"`
	Vehicle     VehicleSpec `json:"vehicle"`
}

// StepResult reports the outcome of a single simulation step.
type StepResult struct {
	Vehicle         VehicleState `json:"vehicle"`
	Status          RoundStatus  `json:"status"`
	CrashedObstacle int          `json:"crashed_obstacle"` // index into Arena.Obstacles, or NoObstacle
}

// Snapshot is an immutable copy of the full simulation state handed to
// presentation layers and transports. Mutating it has no effect on the
// engine.
type Snapshot struct {
	Vehicle         VehicleState `json:"vehicle"`
	Status          RoundStatus  `json:"status"`
	Stats           RoundStats   `json:"stats"`
	CrashedObstacle int          `json:"crashed_obstacle"`
	ConfigName      string       `json:"config_name"`
}

// RoundRecord is one finished round in the cumulative session history.
// Records survive resets the way the vehicle state does not.
type RoundRecord struct {
	ID              string      `json:"id"`
	Outcome         RoundStatus `json:"outcome"`
	ElapsedTime     float64     `json:"elapsed_time"`
	Attempt         int         `json:"attempt"` // 0 for the first round, then the retry number
	CrashedObstacle int         `json:"crashed_obstacle"`
	FinishedAt      int64       `json:"finished_at"`
}

// SavedState is the serializable simulation state used by session
// persistence.
type SavedState struct {
	Vehicle         VehicleState  `json:"vehicle"`
	Status          RoundStatus   `json:"status"`
	Stats           RoundStats    `json:"stats"`
	CrashedObstacle int           `json:"crashed_obstacle"`
	Rounds          []RoundRecord `json:"rounds"`
}
