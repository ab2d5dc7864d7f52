package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/parkbay/parkbay/game/engine"
	"github.com/parkbay/parkbay/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Park Bay Simulator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Park Bay Simulator - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Drive the car into the parking spot. To park you must stop inside the
spot (center within its rectangle), slow enough, and aligned with the
spot's orientation. Hitting any obstacle crashes the round.

AVAILABLE TOOLS:
- sim_state: Get current simulation state
- set_controls: Press or release controls (accelerate, brake, steer_left, steer_right) - requires intent explanation
- advance: Step the simulation forward N frames - requires intent explanation
- reset_round: Reset the round to the start pose (counts as a retry)
- round_history: View finished rounds
- create_session: Create new simulation session
- get_session: Get session details
- list_sessions: List all active sessions
- list_configs: List available arena configurations
- sim_instructions: Get comprehensive driving instructions and physics rules

NOTE: The 'intent' parameter on set_controls/advance tools serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new simulation session with optional arena selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the arena configuration to use (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active simulation sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Simulation operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "sim_state",
		Description: "Get the current simulation state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSimState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_controls",
		Description: "Press or release driving controls. Controls stay settled until changed again.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"controls": map[string]interface{}{
					"type":        "object",
					"description": "Map of control name (accelerate, brake, steer_left, steer_right, restart) to pressed state",
					"additionalProperties": map[string]interface{}{
						"type": "boolean",
					},
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this control change (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "controls"},
		},
	}, c.handleSetControls)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "advance",
		Description: "Step the simulation forward a number of fixed-dt frames with the currently settled controls",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"frames": map[string]interface{}{
					"type":        "integer",
					"description": "Number of frames to simulate (default 1, max 600)",
				},
				"dt": map[string]interface{}{
					"type":        "number",
					"description": "Seconds per frame (default 1/60, clamped to 0.05)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this batch of frames (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleAdvance)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_round",
		Description: "Reset the round to the start pose (counts as a manual retry)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "round_history",
		Description: "Get finished round history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRoundHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available arena configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "sim_instructions",
		Description: "Get comprehensive driving instructions and physics rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleSimInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	configID, _ := args["config_id"].(string)

	body := map[string]interface{}{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Config: %s, Created: %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSimState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var snap engine.Snapshot
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &snap)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Arena geometry for spatial context
	var session service.SessionInfo
	var arena *engine.ArenaConfig
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err == nil {
		arena = session.ArenaConfig
	}

	result := formatSnapshot(&snap, arena)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSetControls(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	controlsRaw, _ := args["controls"].(map[string]interface{})
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	controls := make(map[string]bool, len(controlsRaw))
	for name, v := range controlsRaw {
		if pressed, ok := v.(bool); ok {
			controls[name] = pressed
		}
	}

	body := map[string]interface{}{
		"controls": controls,
	}

	var result service.ControlResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/controls", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf("Controls settled: %s\n\n%s",
		formatControls(result.Controls), formatSnapshot(result.SimState, nil))
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{}
	if frames, ok := args["frames"].(float64); ok {
		body["frames"] = int(frames)
	}
	if dt, ok := args["dt"].(float64); ok {
		body["dt"] = dt
	}

	var result service.AdvanceResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/advance", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatAdvanceResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string           `json:"message"`
		State   *engine.Snapshot `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatSnapshot(response.State, nil))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRoundHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/rounds%s", sessionID, params), nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(&history)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall("GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s\n  %s\n  World: %.0fx%.0f, Obstacles: %d\n\n",
			config.ConfigID, config.Description, config.WorldWidth, config.WorldHeight, config.ObstacleCount)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSimInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Park Bay Simulator - Complete Instructions

OBJECTIVE:
Drive the car into the parking spot and stop there, aligned with the
spot, without hitting anything.

PHYSICS:
• accelerate: thrust forward; velocity is capped at the vehicle's max speed
• brake: decelerates, then reverses; reverse speed has the same cap
• Coasting (neither pedal): drag slows the car; near-zero speeds snap to a full stop
• Steering only works while moving: turn authority scales with speed
• In reverse, steering is mirrored, like a real car backing up
• Each frame advances at most 0.05 simulated seconds regardless of requested dt

PARKING CONDITIONS (all must hold simultaneously):
1. Vehicle center inside the spot rectangle (the spot may be rotated)
2. Speed below the parking speed limit
3. Heading within the angular tolerance of the spot's orientation
   (either nose-in direction counts; the check uses the shortest angle)

CRASHING:
• The vehicle's collision circle touching the interior of any obstacle ends the round
• Exact tangency does not crash; overlap does
• If a frame would both crash and park, the crash wins

ROUND LIFECYCLE:
• A crashed or parked round freezes: no physics, no clock, until reset
• reset_round returns the car to the start pose and counts as a retry
• Finished rounds are recorded and visible via round_history

STRATEGY FOR AGENTS:
1. Read sim_state first: note vehicle pose, spot center, spot angle
2. Plan in short bursts: set controls, advance 10-30 frames, observe
3. Approach the spot slowly; the speed limit for parking is low
4. Use brake (reverse) plus mirrored steering for tight corrections
5. Watch the distance-to-spot and heading-delta readouts in sim_state
6. After a crash, reset_round and change the plan, not just the timing

CONTROL NOTES:
• Controls are latched: a pressed control stays pressed until you release it
• Pressing accelerate and brake together favors braking
• steer_left and steer_right together cancel out
• The restart control retries the round edge-triggered, like a gamepad button

SESSION MANAGEMENT:
- Multiple simulation sessions can run simultaneously
- Each session has a unique short ID
- Sessions maintain independent state and configuration

Good luck, and mind the concrete planters.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	mode := "manual"
	if session.Realtime {
		mode = "realtime"
	}
	return fmt.Sprintf("Session: %s\nConfig: %s\nMode: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName, mode,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatSnapshot(session.SimState, session.ArenaConfig))
}

func formatSnapshot(snap *engine.Snapshot, arena *engine.ArenaConfig) string {
	if snap == nil {
		return "No simulation state available"
	}

	var b strings.Builder
	v := snap.Vehicle

	b.WriteString(fmt.Sprintf("Position: (%.1f, %.1f) | Heading: %.3f rad | Velocity: %.1f\n",
		v.X, v.Y, v.Angle, v.Velocity))
	b.WriteString(fmt.Sprintf("Status: %s | Elapsed: %.2fs | Attempts: %d\n",
		snap.Status, snap.Stats.ElapsedTime, snap.Stats.Attempts))

	if snap.Status == engine.StatusCrashed && snap.CrashedObstacle != engine.NoObstacle {
		b.WriteString(fmt.Sprintf("Crashed into obstacle #%d\n", snap.CrashedObstacle))
	}

	// Spatial decision aids when arena geometry is known
	if arena != nil {
		spot := arena.Spot
		dx := spot.X - v.X
		dy := spot.Y - v.Y
		dist := math.Hypot(dx, dy)
		headingDelta := engine.AngleDelta(v.Angle, spot.Angle)
		bearing := math.Atan2(dy, dx)

		b.WriteString(fmt.Sprintf("\nSpot center: (%.1f, %.1f) angle=%.3f rad, %.0fx%.0f\n",
			spot.X, spot.Y, spot.Angle, spot.Width, spot.Height))
		b.WriteString(fmt.Sprintf("Distance to spot: %.1f | Bearing: %.3f rad | Heading delta: %.3f rad\n",
			dist, bearing, headingDelta))
		b.WriteString(fmt.Sprintf("Park when: speed < %.1f and |heading delta| < %.3f\n",
			arena.Vehicle.ParkSpeedLimit, arena.Vehicle.ParkAngleTolerance))
		b.WriteString(fmt.Sprintf("Obstacles: %d in a %.0fx%.0f world\n",
			len(arena.Obstacles), arena.WorldWidth, arena.WorldHeight))
	}

	switch snap.Status {
	case engine.StatusSucceeded:
		b.WriteString("\nPARKED! Round complete.")
	case engine.StatusCrashed:
		b.WriteString("\nCRASHED. Reset the round to try again.")
	}

	return b.String()
}

func formatControls(controls engine.InputSnapshot) string {
	var pressed []string
	if controls.Accelerate {
		pressed = append(pressed, "accelerate")
	}
	if controls.Brake {
		pressed = append(pressed, "brake")
	}
	if controls.SteerLeft {
		pressed = append(pressed, "steer_left")
	}
	if controls.SteerRight {
		pressed = append(pressed, "steer_right")
	}
	if controls.Restart {
		pressed = append(pressed, "restart")
	}
	if len(pressed) == 0 {
		return "(all released)"
	}
	return strings.Join(pressed, ", ")
}

func formatAdvanceResult(result *service.AdvanceResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Advanced %d frames at dt=%.4f (%.2fs simulated)\n",
		result.FramesExecuted, result.Dt, float64(result.FramesExecuted)*result.Dt))
	if result.Message != "" {
		b.WriteString(result.Message + "\n")
	}
	b.WriteString("\n")
	b.WriteString(formatSnapshot(result.SimState, nil))

	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Round History (Page %d/%d) — Total rounds: %d\n\n",
		history.Page, history.TotalPages, history.TotalRounds)

	if len(history.Rounds) == 0 {
		return result + "(no finished rounds)"
	}

	for i, round := range history.Rounds {
		num := (history.Page-1)*history.PageSize + i + 1
		line := fmt.Sprintf("%d. attempt %d: %s in %.2fs", num, round.Attempt+1, round.Outcome, round.ElapsedTime)
		if round.Outcome == engine.StatusCrashed && round.CrashedObstacle != engine.NoObstacle {
			line += fmt.Sprintf(" (obstacle #%d)", round.CrashedObstacle)
		}
		result += line + "\n"
	}

	return result
}
