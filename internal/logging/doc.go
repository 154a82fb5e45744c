// Package logging constructs the slog loggers used across switchlog: a
// human-oriented console handler for interactive use and a JSON handler for
// machine consumption, plus small attribute helpers shared by all packages.
package logging
