// Package websocket provides WebSocket transport for the Park Bay Simulator.
//
// The websocket package implements:
//   - Real-time bidirectional communication
//   - Session-aware WebSocket connections
//   - Frame broadcasting for realtime sessions
//   - Inbound control forwarding to the simulation
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine that manages reading, writing, and cleanup. All session
// bookkeeping happens on the hub's Run goroutine; producers enqueue
// through channels and never block on slow clients.
//
// Message Protocol:
//
// Messages are JSON-encoded with the following structure:
//   - Incoming: {"type": "controls", "controls": {"accelerate": true}}
//   - Outgoing: {"session_id": "...", "event": "state_update", "sim_state": {...}}
//
// Session Integration:
//
// WebSocket connections are session-aware. Clients specify their session
// ID via query parameter (?session=abc1) when establishing the connection.
// Snapshots are broadcast only to clients connected to the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetControlSink(func(id string, controls map[string]bool) error {
//		_, err := gameService.SetControls(context.Background(), id, controls)
//		return err
//	})
//	go hub.Run()
//
// Connection Lifecycle:
//
// 1. Client connects with session ID
// 2. Connection registered with hub
// 3. Client sends control changes, receives frame updates
// 4. Disconnection triggers cleanup
package websocket
