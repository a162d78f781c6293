// Package server provides the HTTP server for the TriggerBoard dashboard and API.
//
// This package is internal to TriggerBoard and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded HTML/CSS/JS dashboard at "/"
//   - REST API: JSON grid snapshot at "/api/events"
//   - Server-Sent Events: Real-time grid snapshots at "/api/sse"
//   - WebSocket: The same snapshot stream at "/api/ws"
//   - Popup: Per-browser popup state and interactions at "/api/popup"
//   - Triggers: New-trigger submissions at "/api/triggers"
//   - Refresh: Out-of-band poll requests at "/api/refresh"
//   - Metrics: Prometheus exposition at "/metrics"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the triggerboard library should not need to interact with this
// package directly. The server is started automatically by [triggerboard.Board.Start].
package server
