// Package session owns one recording lifetime from start to finalized cut
// log.
//
// A Session wires a timecode tracker and a cut correlator behind a single
// writer goroutine. Device collaborators hand events in through bounded
// channels via OfferCut and OfferTick; the writer merges the two streams in
// observed-time order and applies them one at a time, so the tracker and
// correlator never see concurrent mutation. Stop drains queued events,
// finalizes the log, and returns the session Result; events offered after
// Stop are dropped and counted.
package session
