// Package input collects press/release state for the five logical controls
// into per-frame snapshots.
//
// The adapter is the single funnel between input sources and the simulation:
// keyboard handlers, touch overlays, and API clients all call SetControl with
// the same logical names. The frame loop samples one consistent snapshot per
// tick, so a control flipping between ticks never tears a step.
package input

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/parkbay/parkbay/game/engine"
)

// Logical control names accepted by the adapter
const (
	ControlAccelerate = "accelerate"
	ControlBrake      = "brake"
	ControlSteerLeft  = "steer_left"
	ControlSteerRight = "steer_right"
	ControlRestart    = "restart"
)

// ControlNames lists every valid control, sorted, for error messages and
// API discovery.
func ControlNames() []string {
	names := []string{
		ControlAccelerate,
		ControlBrake,
		ControlSteerLeft,
		ControlSteerRight,
		ControlRestart,
	}
	sort.Strings(names)
	return names
}

// Adapter holds the current press/release state of the logical controls.
// Writes arrive from HTTP and WebSocket goroutines; the frame loop reads a
// settled snapshot once per tick.
type Adapter struct {
	mu    sync.RWMutex
	state engine.InputSnapshot
}

// NewAdapter creates an input adapter with all controls released
func NewAdapter() *Adapter {
	return &Adapter{}
}

// SetControl sets a single control's pressed state. Unknown control names
// are rejected with a message listing the valid ones.
func (a *Adapter) SetControl(name string, active bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch name {
	case ControlAccelerate:
		a.state.Accelerate = active
	case ControlBrake:
		a.state.Brake = active
	case ControlSteerLeft:
		a.state.SteerLeft = active
	case ControlSteerRight:
		a.state.SteerRight = active
	case ControlRestart:
		a.state.Restart = active
	default:
		return fmt.Errorf("unknown control %q, valid controls: %s", name, strings.Join(ControlNames(), ", "))
	}

	return nil
}

// Apply sets multiple controls at once. The whole batch is validated before
// any control changes, so a bad name leaves the snapshot untouched.
func (a *Adapter) Apply(controls map[string]bool) error {
	for name := range controls {
		switch name {
		case ControlAccelerate, ControlBrake, ControlSteerLeft, ControlSteerRight, ControlRestart:
		default:
			return fmt.Errorf("unknown control %q, valid controls: %s", name, strings.Join(ControlNames(), ", "))
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for name, active := range controls {
		switch name {
		case ControlAccelerate:
			a.state.Accelerate = active
		case ControlBrake:
			a.state.Brake = active
		case ControlSteerLeft:
			a.state.SteerLeft = active
		case ControlSteerRight:
			a.state.SteerRight = active
		case ControlRestart:
			a.state.Restart = active
		}
	}

	return nil
}

// Snapshot returns one consistent copy of the current control state
func (a *Adapter) Snapshot() engine.InputSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Release clears every control, as when a client disconnects mid-press
func (a *Adapter) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = engine.InputSnapshot{}
}
