// Command autodrive connects to a running Park Bay server, plans a parking
// sequence with the autopilot, and drives it through the REST API frame by
// frame. Useful for smoke-testing arenas end to end and for generating
// realistic session history.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/parkbay/parkbay/autopilot"
	"github.com/parkbay/parkbay/game/engine"
)

// sessionResponse mirrors the API's session payload.
type sessionResponse struct {
	ID          string              `json:"id"`
	ConfigName  string              `json:"config_name"`
	SimState    *engine.Snapshot    `json:"sim_state"`
	ArenaConfig *engine.ArenaConfig `json:"arena_config"`
}

// advanceResponse mirrors the API's advance payload.
type advanceResponse struct {
	FramesExecuted int                `json:"frames_executed"`
	SimState       *engine.Snapshot   `json:"sim_state"`
	Status         engine.RoundStatus `json:"status"`
	Message        string             `json:"message"`
}

type resetResponse struct {
	Message string           `json:"message"`
	State   *engine.Snapshot `json:"state"`
}

// Client is a minimal REST client for driving one session.
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) post(path string, body interface{}, result interface{}) error {
	var reqBody []byte
	var err error
	if body != nil {
		reqBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s: %s - %s", path, resp.Status, string(data))
	}
	if result != nil {
		return json.Unmarshal(data, result)
	}
	return nil
}

func (c *Client) CreateSession(configID string) (*sessionResponse, error) {
	body := map[string]interface{}{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session sessionResponse
	if err := c.post("/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = session.ID
	return &session, nil
}

func (c *Client) GetSession() (*sessionResponse, error) {
	resp, err := c.client.Get(fmt.Sprintf("%s/api/sessions/%s", c.baseURL, c.sessionID))
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get session: %s - %s", resp.Status, string(data))
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &session, nil
}

func (c *Client) SetControls(controls map[string]bool) error {
	path := fmt.Sprintf("/api/sessions/%s/controls", c.sessionID)
	return c.post(path, map[string]interface{}{"controls": controls}, nil)
}

func (c *Client) Advance(frames int, dt float64) (*advanceResponse, error) {
	path := fmt.Sprintf("/api/sessions/%s/advance", c.sessionID)
	body := map[string]interface{}{"frames": frames, "dt": dt}

	var result advanceResponse
	if err := c.post(path, body, &result); err != nil {
		return nil, fmt.Errorf("advance: %w", err)
	}
	return &result, nil
}

func (c *Client) Reset() (*engine.Snapshot, error) {
	path := fmt.Sprintf("/api/sessions/%s/reset", c.sessionID)

	var result resetResponse
	if err := c.post(path, nil, &result); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return result.State, nil
}

// controlsMap converts an input snapshot into the wire format, listing every
// control so releases are explicit.
func controlsMap(snap engine.InputSnapshot) map[string]bool {
	return map[string]bool{
		"accelerate":  snap.Accelerate,
		"brake":       snap.Brake,
		"steer_left":  snap.SteerLeft,
		"steer_right": snap.SteerRight,
	}
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Simulation server URL")
	configID := flag.String("config", "", "Arena configuration ID (classic, easy, tight)")
	continueSession := flag.String("continue", "", "Drive an existing session by ID")
	dt := flag.Float64("dt", 1.0/60.0, "Seconds per simulated frame")
	delayMs := flag.Int("delay", 0, "Delay between control segments in milliseconds")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	log.Printf("Connecting to simulation server at %s", *serverURL)
	client := NewClient(*serverURL)

	// Check for saved session ID
	sessionFile := ".session"
	savedSessionID := ""

	if *continueSession != "" {
		savedSessionID = *continueSession
	} else if data, err := os.ReadFile(sessionFile); err == nil {
		savedSessionID = string(bytes.TrimSpace(data))
	}

	var session *sessionResponse
	var err error

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		log.Printf("Resuming session: %s", client.sessionID)
		session, err = client.GetSession()
		if err != nil {
			log.Printf("Failed to resume session (may be expired): %v", err)
			savedSessionID = ""
		}
	}

	if savedSessionID == "" {
		session, err = client.CreateSession(*configID)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("Session created: %s (config %s)", client.sessionID, session.ConfigName)

		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}

	if session.ArenaConfig == nil {
		log.Fatalf("Session has no arena configuration")
	}

	// Fresh round before driving
	if _, err := client.Reset(); err != nil {
		log.Fatalf("Failed to reset round: %v", err)
	}

	log.Printf("Planning a parking sequence for arena %q...", session.ArenaConfig.Name)
	plan, err := autopilot.Solve(session.ArenaConfig, autopilot.Options{Dt: *dt})
	if err != nil {
		log.Fatalf("Autopilot found no parking sequence: %v", err)
	}
	log.Printf("Plan ready: %d segments, %d frames, %.2fs simulated",
		len(plan.Script), plan.Frames, plan.Elapsed)

	// Replay the plan through the API
	var last *advanceResponse
	for i, seg := range plan.Script {
		if err := client.SetControls(controlsMap(seg.Controls)); err != nil {
			log.Fatalf("Segment %d: failed to set controls: %v", i, err)
		}

		last, err = client.Advance(seg.Frames, *dt)
		if err != nil {
			log.Fatalf("Segment %d: failed to advance: %v", i, err)
		}

		if *verbose {
			v := last.SimState.Vehicle
			log.Printf("Segment %d/%d: pos=(%.1f,%.1f) vel=%.1f status=%s",
				i+1, len(plan.Script), v.X, v.Y, v.Velocity, last.Status)
		}

		if last.Status != engine.StatusInProgress {
			break
		}

		if *delayMs > 0 {
			time.Sleep(time.Duration(*delayMs) * time.Millisecond)
		}
	}

	if last == nil {
		log.Fatalf("Plan contained no segments")
	}

	switch last.Status {
	case engine.StatusSucceeded:
		log.Printf("PARKED in %.2fs (session %s)", last.SimState.Stats.ElapsedTime, client.sessionID)
		os.Exit(0)
	case engine.StatusCrashed:
		log.Printf("Crashed: %s (session %s)", last.Message, client.sessionID)
		os.Exit(1)
	default:
		log.Printf("Plan finished without parking (session %s)", client.sessionID)
		os.Exit(1)
	}
}
