// Package config loads, normalizes, and validates switchlog configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// daemon and CLI need: frame rate and offset for the correlation engine,
// directories for the session archive and EDL exports, and the daemon's socket
// and HTTP bind addresses.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, resolved timecode rates, and clear validation errors.
package config
