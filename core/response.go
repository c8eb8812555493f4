package core

import "time"

// Response is the uniform result of handling a routed message. Exactly one of
// Data (on success) or Error (on failure) is meaningful, selected by Success.
type Response struct {
	Success   bool           `json:"success"`
	Data      map[string]any `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// SuccessResponse builds a successful response carrying data.
func SuccessResponse(data map[string]any) Response {
	return Response{Success: true, Data: data, Timestamp: time.Now().UTC()}
}

// ErrorResponse builds a failed response carrying the error text.
func ErrorResponse(err string) Response {
	return Response{Success: false, Error: err, Timestamp: time.Now().UTC()}
}

// Answer is what a schedule agent returns for a natural-language query: the
// answer text plus the knowledge-store documents that supported it. Documents
// may be empty when the store had nothing relevant.
type Answer struct {
	Text      string     `json:"text"`
	Documents []Document `json:"documents,omitempty"`
	// Degraded reports that Text was assembled without model assistance
	// (generation failed and the agent fell back to stored documents).
	Degraded bool `json:"degraded,omitempty"`
}
