package model

import "time"

// Role tags the speaker of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a chat message in the conversation
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"-"`
}

// IsAssistant reports whether the message was written by the assistant.
func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}
