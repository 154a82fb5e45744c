package ipc

import (
	"switchlog/internal/api"
	"switchlog/internal/daemon"
)

// SessionStartRequest arms a new recording session.
type SessionStartRequest struct{}

// SessionStartResponse carries the armed session snapshot.
type SessionStartResponse struct {
	Started bool              `json:"started"`
	Message string            `json:"message"`
	Session api.SessionStatus `json:"session"`
}

// SessionStopRequest stops the active session.
type SessionStopRequest struct{}

// SessionStopResponse carries the archived session summary.
type SessionStopResponse struct {
	Stopped bool               `json:"stopped"`
	Message string             `json:"message"`
	Summary daemon.StopSummary `json:"summary"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse mirrors the HTTP status DTO for IPC callers.
type StatusResponse = api.StatusResponse

// SessionListRequest lists archived sessions, newest first.
type SessionListRequest struct {
	Limit int `json:"limit"`
}

// SessionListResponse contains archive entries.
type SessionListResponse struct {
	Sessions []api.SessionSummary `json:"sessions"`
}

// SessionDescribeRequest fetches one archived session with its cut records.
type SessionDescribeRequest struct {
	ID string `json:"id"`
}

// SessionDescribeResponse contains one archive entry and its records.
type SessionDescribeResponse struct {
	Session api.SessionSummary   `json:"session"`
	Records []api.ArchivedRecord `json:"records"`
}

// ExportRequest fetches the EDL text of an archived session.
type ExportRequest struct {
	ID string `json:"id"`
}

// ExportResponse contains the EDL text and its on-disk location.
type ExportResponse struct {
	Path string `json:"path"`
	EDL  string `json:"edl"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
