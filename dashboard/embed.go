// Package dashboard provides the embedded web UI assets for TriggerBoard.
//
// This package uses Go's embed directive to include the dashboard HTML, CSS,
// and JavaScript at compile time. This enables single-binary deployment
// without external asset files.
//
// The page renders the grid from the server's snapshot stream and drives the
// trigger-configuration popup through the popup API, so visibility rules live
// in Go rather than in the page script.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Grid and popup markup with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
