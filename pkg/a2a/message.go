package a2a

import (
	"github.com/google/uuid"
)

// Kind discriminators used on the wire for polymorphic results.
const (
	KindMessage = "message"
	KindTask    = "task"
)

// Role identifies the author of a Message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

/*
Message represents all non-artifact communication between client & agent.
*/
type Message struct {
	Kind      string         `json:"kind"`
	MessageID string         `json:"messageId"`
	Role      Role           `json:"role"`
	Parts     []Part         `json:"parts"`
	TaskID    string         `json:"taskId,omitempty"`
	ContextID string         `json:"contextId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewTextMessage(role Role, text string) *Message {
	return &Message{
		Kind:      KindMessage,
		MessageID: uuid.NewString(),
		Role:      role,
		Parts:     []Part{NewTextPart(text)},
	}
}

/*
Text returns the text parts of the message joined by newlines and trimmed.
A nil message has no text.
*/
func (msg *Message) Text() string {
	if msg == nil {
		return ""
	}

	return joinText(msg.Parts, "\n")
}
