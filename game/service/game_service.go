package service

import (
	"context"

	"github.com/parkbay/parkbay/game/engine"
)

// GameService defines all simulation-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, realtime bool) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Simulation Operations
	SetControls(ctx context.Context, sessionID string, controls map[string]bool) (*ControlResult, error)
	Advance(ctx context.Context, sessionID string, frames int, dt float64) (*AdvanceResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Simulation State
	GetSimState(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetRoundHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.ArenaConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.ArenaConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.ArenaConfig, realtime bool) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles arena configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.ArenaConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.ArenaConfig
	SaveConfig(name string, config *engine.ArenaConfig) error
}
