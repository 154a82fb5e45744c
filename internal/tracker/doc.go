// Package tracker estimates the recorder's timecode at arbitrary past
// instants by extrapolating from the most recent trusted transport reading.
package tracker
