// Package session provides session management for the Park Bay Simulator.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management, including frame loop ownership
//   - Session cleanup and expiration
//   - Optional file-backed persistence of simulation state
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session bundles one simulation engine, one input adapter, and one
// frame loop. Realtime sessions run their loop on a wall-clock ticker as
// soon as they are created; manual sessions are stepped on demand.
//
// Session Identifiers:
//
// Sessions use 8-character IDs derived from random UUIDs for easy
// reference. Lookups are case-insensitive.
//
// Concurrency:
//
// The session manager is thread-safe. Multiple goroutines can safely
// create, retrieve, and delete different sessions simultaneously. The
// manager owns loop shutdown: deleting or expiring a realtime session
// stops its ticker before the session is dropped.
//
// Usage:
//
//	manager := session.NewManager()
//
//	// Create a new manual session
//	sess, err := manager.Create("", config, false)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sess.ID)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// List all active sessions
//	sessions := manager.List()
//
// Cleanup:
//
// Sessions can be explicitly deleted or expire based on inactivity. The
// manager provides cleanup methods for removing stale sessions and
// freeing their loops.
package session
