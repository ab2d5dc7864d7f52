package service

import (
	"time"

	"github.com/parkbay/parkbay/game/engine"
	"github.com/parkbay/parkbay/game/input"
	"github.com/parkbay/parkbay/game/loop"
)

// Session represents an active simulation session: one engine, one input
// adapter, and one frame loop. Realtime sessions run the loop on a
// wall-clock ticker; manual sessions are driven through Advance.
type Session struct {
	ID             string
	Engine         *engine.ParkingEngine
	Input          *input.Adapter
	Loop           *loop.Loop
	Config         *engine.ArenaConfig
	Realtime       bool
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// SessionInfo provides information about a simulation session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	Realtime       bool                `json:"realtime"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	SimState       *engine.Snapshot    `json:"sim_state"`
	ArenaConfig    *engine.ArenaConfig `json:"arena_config"`
}

// ControlResult reports the settled control state after a SetControls call
type ControlResult struct {
	Controls engine.InputSnapshot `json:"controls"`
	SimState *engine.Snapshot     `json:"sim_state"`
}

// AdvanceResult contains the outcome of a manual frame batch
type AdvanceResult struct {
	FramesExecuted  int                `json:"frames_executed"`
	Dt              float64            `json:"dt"`
	SimState        *engine.Snapshot   `json:"sim_state"`
	Status          engine.RoundStatus `json:"status"`
	CrashedObstacle int                `json:"crashed_obstacle"`
	Message         string             `json:"message,omitempty"`
}

// HistoryOptions configures round history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated round history
type HistoryResponse struct {
	Rounds      []engine.RoundRecord `json:"rounds"`
	TotalRounds int                  `json:"total_rounds"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
	TotalPages  int                  `json:"total_pages"`
	HasNext     bool                 `json:"has_next"`
	HasPrevious bool                 `json:"has_previous"`
}

// ConfigInfo provides information about an arena configuration
type ConfigInfo struct {
	Filename      string  `json:"filename"`
	ConfigID      string  `json:"config_id"` // The identifier to use for session creation
	Name          string  `json:"name"`      // Display name
	Description   string  `json:"description"`
	WorldWidth    float64 `json:"world_width"`
	WorldHeight   float64 `json:"world_height"`
	ObstacleCount int     `json:"obstacle_count"`
}
