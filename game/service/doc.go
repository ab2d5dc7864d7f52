// Package service defines the GameService interface and its implementation,
// the orchestration layer between transports (REST, WebSocket, MCP) and the
// simulation core.
//
// The service owns no simulation logic itself: it resolves sessions, applies
// control changes through each session's input adapter, drives manual
// sessions through their frame loop, and shapes engine snapshots into
// transport-friendly DTOs.
//
// Architecture:
//
//	transports (api, websocket, mcp)
//	    ↓
//	service.GameService
//	    ↓
//	session.Manager + config.Manager
//	    ↓
//	engine.ParkingEngine / input.Adapter / loop.Loop
package service
