// Package loop drives the simulation at a fixed tick rate.
//
// A Loop is the frame driver from the simulation's point of view: each tick
// it samples one input snapshot, derives dt from monotonic timestamps
// (clamped by the engine), applies restart edge detection, steps the engine,
// and hands the resulting snapshot to an optional frame callback. The same
// per-frame logic is reusable synchronously through Advance for sessions
// driven by an API client instead of a wall clock.
package loop

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/parkbay/parkbay/game/engine"
	"github.com/parkbay/parkbay/game/input"
)

const (
	// DefaultTickRate is the realtime step frequency in frames per second.
	DefaultTickRate = 60

	// MaxAdvanceFrames bounds a single synchronous Advance call.
	MaxAdvanceFrames = 600
)

var (
	ErrLoopRunning   = errors.New("frame loop already running")
	ErrTooManyFrames = fmt.Errorf("at most %d frames per advance", MaxAdvanceFrames)
)

// FrameFunc receives the post-step snapshot once per frame
type FrameFunc func(engine.Snapshot)

// Loop steps an engine from an input adapter, either on a wall-clock ticker
// (Start/Stop) or synchronously in fixed-dt batches (Advance).
type Loop struct {
	engine  engine.Engine
	adapter *input.Adapter
	onFrame FrameFunc
	tick    time.Duration

	mu          sync.Mutex
	running     bool
	stop        chan struct{}
	done        chan struct{}
	prevRestart bool
}

// Option configures a Loop
type Option func(*Loop)

// WithTickRate overrides the realtime tick rate (frames per second)
func WithTickRate(fps int) Option {
	return func(l *Loop) {
		if fps > 0 {
			l.tick = time.Second / time.Duration(fps)
		}
	}
}

// WithFrameFunc installs a callback invoked with the snapshot after every
// stepped frame. The callback runs on the loop goroutine (or the Advance
// caller), so it must not block for long.
func WithFrameFunc(fn FrameFunc) Option {
	return func(l *Loop) {
		l.onFrame = fn
	}
}

// NewLoop creates a frame loop for the given engine and input adapter
func NewLoop(eng engine.Engine, adapter *input.Adapter, opts ...Option) *Loop {
	l := &Loop{
		engine:  eng,
		adapter: adapter,
		tick:    time.Second / DefaultTickRate,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start begins stepping the engine on a wall-clock ticker. It returns
// ErrLoopRunning if the loop is already live.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return ErrLoopRunning
	}
	l.running = true
	l.stop = make(chan struct{})
	l.done = make(chan struct{})

	go l.run(l.stop, l.done)
	return nil
}

// Stop cancels the loop. It blocks until the in-flight frame (if any) has
// fully completed; no step starts after Stop returns. Stopping a loop that
// is not running is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	stop, done := l.stop, l.done
	l.mu.Unlock()

	close(stop)
	<-done

	l.mu.Lock()
	l.running = false
	l.mu.Unlock()
}

// Running reports whether the realtime loop is live
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// run is the ticker goroutine. dt comes from monotonic timestamps; the
// engine clamps it, so a long scheduler stall costs at most MaxDeltaTime of
// simulated time per frame.
func (l *Loop) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			l.frame(dt)
		}
	}
}

// frame runs exactly one simulation frame: snapshot, restart edge, step,
// callback.
func (l *Loop) frame(dt float64) {
	snap := l.adapter.Snapshot()

	l.mu.Lock()
	restartEdge := snap.Restart && !l.prevRestart
	l.prevRestart = snap.Restart
	l.mu.Unlock()

	if restartEdge {
		l.engine.Reset(true)
	}

	l.engine.Step(snap, dt)

	if l.onFrame != nil {
		l.onFrame(l.engine.Snapshot())
	}
}

// Advance synchronously runs n frames at a fixed dt through the same
// per-frame logic the realtime ticker uses. It refuses to run while the
// realtime loop is live so the two drivers never interleave.
func (l *Loop) Advance(frames int, dt float64) (engine.Snapshot, error) {
	if frames <= 0 {
		return engine.Snapshot{}, errors.New("frames must be positive")
	}
	if frames > MaxAdvanceFrames {
		return engine.Snapshot{}, ErrTooManyFrames
	}

	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return engine.Snapshot{}, ErrLoopRunning
	}
	l.mu.Unlock()

	for i := 0; i < frames; i++ {
		l.frame(dt)
	}

	return l.engine.Snapshot(), nil
}
