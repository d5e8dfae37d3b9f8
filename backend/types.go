package backend

import "assistui/model"

const (
	ChatPath   = "/api/chat"
	StreamPath = "/api/chat/stream"
	HealthPath = "/health"
)

const (
	// EventPrefix marks the lines of a stream that carry an event.
	EventPrefix = "data: "

	EventTypeText = "text"
	EventTypeDone = "done"
)

// ChatRequest is the body of both chat endpoints: the full history,
// including the user turn being answered.
type ChatRequest struct {
	Messages []model.Message `json:"messages"`
}

// ChatResponse is the body returned by /api/chat.
type ChatResponse struct {
	Message *string `json:"message"`
}

// Event is one decoded stream line.
type Event struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// IsText reports whether the event carries a reply fragment.
func (e Event) IsText() bool {
	return e.Type == EventTypeText
}

// HealthStatus is returned by GET /health.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
