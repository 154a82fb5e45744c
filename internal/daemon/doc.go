// Package daemon coordinates the long-running switchlog process.
//
// The Daemon enforces single-instance execution through a lock file, pumps
// device events into the active session, archives finished sessions, writes
// their EDL exports, and exposes an HTTP API with a live websocket feed of
// the cut log.
package daemon
