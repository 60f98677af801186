// Package cli provides the interactive SiteSinc offline console.
//
// It wires configuration, the local cache, the sync engine, and an
// interactive REPL that works both online and offline. Typical flow:
// paste a session token, pick a project, browse its resources, and
// enable offline mode to keep a local copy of everything.
//
// Key commands:
//   - login / logout
//   - use <projectId>
//   - drawings, documents, rfis, forms, submissions, photos
//   - open <drawingId>
//   - download, offline on|off
//   - flush, status
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
