// Package notifications delivers push notifications through ntfy.
//
// The service is a no-op unless a topic is configured, so callers can notify
// unconditionally without checking configuration themselves.
package notifications
