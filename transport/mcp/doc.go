// Package mcp provides the Model Context Protocol interface for the Park Bay
// Simulator.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for simulation operations
//   - A thin client that proxies every tool call to the REST API
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - sim_state: Get the current simulation state with spatial readouts
//   - set_controls: Press or release latched driving controls
//   - advance: Step the simulation forward a batch of fixed-dt frames
//   - reset_round: Reset the round to the start pose (counts a retry)
//   - round_history: Retrieve finished rounds with pagination
//   - create_session: Create a new session with arena selection
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - list_configs: List available arena configurations
//   - sim_instructions: Physics rules and driving strategy for agents
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: HTTP endpoint for remote MCP integration
//
// Rubber Duck Parameters:
//
// set_controls and advance accept an optional intent parameter. It is not
// interpreted; requiring agents to articulate a plan before acting measurably
// improves their driving.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	srv := client.GetMCPServer()
//
//	// Stdio mode
//	server.ServeStdio(srv)
//
//	// HTTP mode
//	httpServer := server.NewStreamableHTTPServer(srv)
//	http.Handle("/mcp", httpServer)
package mcp
