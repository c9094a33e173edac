package core

import "time"

// Role is the conversational role of a message.
type Role string

const (
	// RoleUser marks user and moderator input.
	RoleUser Role = "user"
	// RoleAssistant marks participant output and system error notices.
	RoleAssistant Role = "assistant"
)

// Reserved senders that are not participant ids.
const (
	SenderUser      = "user"
	SenderModerator = "moderator"
	SenderSystem    = "system"
)

// MessageMetadata is the typed metadata schema of a message.
type MessageMetadata struct {
	RespondingTo string     `json:"respondingTo,omitempty"` // sender this message answers (dialogue mode)
	Round        int        `json:"round,omitempty"`        // 1-based dialogue round
	Extensions   Extensions `json:"extensions,omitempty"`
}

// Message is a single append-only entry of a conversation.
type Message struct {
	Role           Role             `json:"role"`
	Content        string           `json:"content"`
	Timestamp      time.Time        `json:"timestamp"`
	Sender         string           `json:"sender"`
	UsedMemories   int              `json:"usedMemories,omitempty"`
	MemoryEnhanced bool             `json:"memoryEnhanced,omitempty"`
	IsError        bool             `json:"isError,omitempty"`
	Metadata       *MessageMetadata `json:"metadata,omitempty"`
}

// Turn returns the role/content pair handed to provider adapters as history.
func (m Message) Turn() Turn { return Turn{Role: m.Role, Content: m.Content} }

// clone deep copies the metadata pointer so stored messages cannot be mutated
// through returned copies.
func (m Message) clone() Message {
	if m.Metadata != nil {
		md := *m.Metadata
		md.Extensions = m.Metadata.Extensions.Clone()
		m.Metadata = &md
	}
	return m
}

// Turn is one element of the history window passed to a provider adapter.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
