package handler

import (
	"time"

	"github.com/yndnr/hashguard/internal/core/service"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// SetRequest is the request body for POST /set. Value is a pointer so an
// absent value can be told apart from an empty one.
type SetRequest struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

// ValueResponse is the response body for GET /get/{key}.
type ValueResponse struct {
	Value string `json:"value"`
}

// SetResponse is the response body for POST /set.
type SetResponse struct {
	Key string `json:"key"`
}

// DeleteResponse is the response body for DELETE /delete/{key}.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// StatsResponse is the response body for GET /stats.
type StatsResponse = service.StatsReport

// RehashResponse is the response body for POST /admin/v1/rehash.
type RehashResponse struct {
	RehashCount int   `json:"rehash_count"`
	DurationMs  int64 `json:"duration_ms"`
}
