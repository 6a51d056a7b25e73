package handler

import "time"

// Envelope codes. Error codes follow the MK-<area>-<http status><n> scheme.
const (
	CodeOK       = "OK"
	CodeInternal = "MK-SYS-5000"
	CodeNotReady = "MK-SYS-5030"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      CodeOK,
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Stats is the body of GET /status.
type Stats struct {
	Version           string `json:"version"`
	Commit            string `json:"commit"`
	GoVersion         string `json:"go_version"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
	Keys              int    `json:"keys"`
	Shards            int    `json:"shards"`
	Connections       int    `json:"connections"`
	CommandsProcessed uint64 `json:"commands_processed"`
}

// StatsFunc returns a live Stats snapshot. Build fields are filled in by
// the handler.
type StatsFunc func() Stats
