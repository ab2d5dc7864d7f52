// Package api provides HTTP REST API handlers for the Park Bay Simulator.
//
// The api package implements:
//   - RESTful endpoints for simulation operations
//   - Session management endpoints
//   - Arena configuration listing and upload
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (manual or realtime)
//   - GET /api/sessions - List all sessions
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Simulation Operations:
//   - GET /api/sessions/{id}/state - Current simulation snapshot
//   - POST /api/sessions/{id}/controls - Press or release named controls
//   - POST /api/sessions/{id}/advance - Step a manual session by N frames
//   - POST /api/sessions/{id}/reset - Reset the round (counts as a retry)
//   - GET /api/sessions/{id}/rounds - Round history with pagination
//
// Configuration:
//   - GET /api/configs - List available arena configurations
//   - POST /api/configs - Upload a new arena configuration
//   - GET /api/configs/{name} - Fetch a full arena configuration
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Controls are sent as a map of
// control names to pressed state:
//
//	{
//	  "controls": { "accelerate": true, "steer_left": false }
//	}
//
// Advance requests name a frame count and an optional per-frame dt:
//
//	{
//	  "frames": 30,
//	  "dt": 0.0167
//	}
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
