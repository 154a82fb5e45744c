// Package edl serializes finalized cut logs into CMX3600-style Edit Decision
// List files.
package edl
