// Package deviceio defines the event boundary between the correlation engine
// and the switcher/recorder collaborators. The engine consumes SourceChanged
// and TimecodeTick values through channel-backed feed interfaces; how those
// events are obtained from real hardware is the collaborators' concern.
//
// ReplayFeed provides a scripted stand-in for both devices, used by tests and
// by the daemon's replay mode.
package deviceio
