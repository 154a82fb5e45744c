// Package correlator reconciles switcher source-change events with recorder
// timecode into an append-only, continuity-checked cut log.
//
// The correlator is a three-state machine (idle, armed, recording). Each
// record's out point and its successor's in point share a single boundary
// value, so the continuity invariant cannot be violated by resolving the two
// sides at different times.
package correlator
