// Package store archives finalized sessions in SQLite.
//
// Each completed session is written once, together with its cut records and
// counters, so past shows remain inspectable after the daemon restarts. The
// archive is append-only apart from recording the EDL export location.
package store
