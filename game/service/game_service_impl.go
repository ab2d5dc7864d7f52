package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/parkbay/parkbay/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new simulation session. An empty configName uses
// the default arena; realtime sessions start their frame loop immediately.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, realtime bool) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.ArenaConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide a helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", configName, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let the session manager generate the ID
	session, err := s.sessions.Create("", config, realtime)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// SetControls applies a batch of control changes to the session's input
// adapter. The next stepped frame picks them up as one settled snapshot.
func (s *gameServiceImpl) SetControls(ctx context.Context, sessionID string, controls map[string]bool) (*ControlResult, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	if err := session.Input.Apply(controls); err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)

	snap := session.Engine.Snapshot()
	return &ControlResult{
		Controls: session.Input.Snapshot(),
		SimState: &snap,
	}, nil
}

// Advance runs a batch of fixed-dt frames for a manual session. Realtime
// sessions refuse: their ticker is the only frame driver.
func (s *gameServiceImpl) Advance(ctx context.Context, sessionID string, frames int, dt float64) (*AdvanceResult, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	snap, err := session.Loop.Advance(frames, dt)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	s.sessions.Save(sessionID)

	result := &AdvanceResult{
		FramesExecuted:  frames,
		Dt:              dt,
		SimState:        &snap,
		Status:          snap.Status,
		CrashedObstacle: snap.CrashedObstacle,
	}

	switch snap.Status {
	case engine.StatusCrashed:
		result.Message = fmt.Sprintf("Crashed into obstacle %d after %.2fs", snap.CrashedObstacle, snap.Stats.ElapsedTime)
	case engine.StatusSucceeded:
		result.Message = fmt.Sprintf("Parked in %.2fs", snap.Stats.ElapsedTime)
	}

	return result, nil
}

// Reset returns the session's round to its start pose. API resets count as
// manual retries.
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	snap := session.Engine.Reset(true)

	s.sessions.UpdateLastAccessed(sessionID)
	s.sessions.Save(sessionID)

	return &snap, nil
}

// GetSimState returns the current simulation snapshot
func (s *gameServiceImpl) GetSimState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	snap := session.Engine.Snapshot()
	return &snap, nil
}

// GetRoundHistory returns paginated round history for a session
func (s *gameServiceImpl) GetRoundHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	rounds := session.Engine.Rounds()
	total := len(rounds)

	// Normalize options
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}
	if opts.Order != "asc" && opts.Order != "desc" {
		opts.Order = "desc"
	}

	// Rounds accumulate oldest-first; descending order shows newest first.
	if opts.Order == "desc" {
		for i, j := 0, len(rounds)-1; i < j; i, j = i+1, j-1 {
			rounds[i], rounds[j] = rounds[j], rounds[i]
		}
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	return &HistoryResponse{
		Rounds:      rounds[start:end],
		TotalRounds: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns information about all available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a configuration by name
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.ArenaConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.ArenaConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// sessionInfo shapes a session into its transport DTO
func (s *gameServiceImpl) sessionInfo(session *Session) *SessionInfo {
	snap := session.Engine.Snapshot()
	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     session.Config.Name,
		Realtime:       session.Realtime,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		SimState:       &snap,
		ArenaConfig:    session.Config,
	}
}
