package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ConversationType classifies a conversation by participant count.
type ConversationType string

const (
	// ConversationSingle has exactly one participant.
	ConversationSingle ConversationType = "single"
	// ConversationBilateral has two or more participants.
	ConversationBilateral ConversationType = "bilateral"
	// ConversationMultilateral has two or more participants.
	ConversationMultilateral ConversationType = "multilateral"
)

// Valid reports whether t is one of the known conversation types.
func (t ConversationType) Valid() bool {
	switch t {
	case ConversationSingle, ConversationBilateral, ConversationMultilateral:
		return true
	}
	return false
}

// ConversationMetadata is the typed metadata schema of a conversation.
type ConversationMetadata struct {
	MaxAutoRounds int        `json:"maxAutoRounds,omitempty"`
	AutoProgress  bool       `json:"autoProgress"`
	Extensions    Extensions `json:"extensions,omitempty"`
}

// Conversation owns message ordering and conversation metadata. It is safe for
// concurrent access; messages are only ever appended.
//
// Contract:
//   - Type single ⟺ exactly one participant; other types need at least two
//   - Participants are unique, non-empty ids and never change after creation
//   - Messages returns a copy
//   - Title is the only field mutable from outside the orchestrator
type Conversation struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Type         ConversationType     `json:"type"`
	Participants []string             `json:"participants"`
	Messages     []Message            `json:"messages"`
	CreatedAt    time.Time            `json:"createdAt"`
	Metadata     ConversationMetadata `json:"metadata"`
	mu           sync.RWMutex
}

// NewConversation validates the participant invariants and returns an empty
// conversation with the default title ("New Bilateral Conversation", ...).
func NewConversation(id string, typ ConversationType, participants []string) (*Conversation, error) {
	c := &Conversation{
		ID:           id,
		Type:         typ,
		Participants: append([]string(nil), participants...),
		Messages:     []Message{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.Title = DefaultTitle(typ)
	return c, nil
}

// DefaultTitle returns the title given to freshly created conversations.
func DefaultTitle(typ ConversationType) string {
	s := string(typ)
	if s == "" {
		return "New Conversation"
	}
	return fmt.Sprintf("New %s Conversation", strings.ToUpper(s[:1])+s[1:])
}

// Validate checks the type / participant invariants.
func (c *Conversation) Validate() error {
	if !c.Type.Valid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown conversation type %q", c.Type)}
	}
	if len(c.Participants) == 0 {
		return &ValidationError{Field: "participants", Reason: "at least one participant required"}
	}
	seen := make(map[string]struct{}, len(c.Participants))
	for _, p := range c.Participants {
		if strings.TrimSpace(p) == "" {
			return &ValidationError{Field: "participants", Reason: "empty participant id"}
		}
		if _, dup := seen[p]; dup {
			return &ValidationError{Field: "participants", Reason: fmt.Sprintf("duplicate participant %q", p)}
		}
		seen[p] = struct{}{}
	}
	if c.Type == ConversationSingle && len(c.Participants) != 1 {
		return &ValidationError{Field: "participants", Reason: "single conversations take exactly one participant"}
	}
	if c.Type != ConversationSingle && len(c.Participants) < 2 {
		return &ValidationError{Field: "participants", Reason: fmt.Sprintf("%s conversations need at least two participants", c.Type)}
	}
	return nil
}

// Append adds messages to the end of the history.
func (c *Conversation) Append(msgs ...Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range msgs {
		c.Messages = append(c.Messages, m.clone())
	}
}

// SetTitle renames the conversation.
func (c *Conversation) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Title = title
}

// GetTitle returns the current title.
func (c *Conversation) GetTitle() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Title
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Messages)
}

// GetMessages returns a copy of the message history.
func (c *Conversation) GetMessages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.Messages))
	for i, m := range c.Messages {
		out[i] = m.clone()
	}
	return out
}

// LastMessage returns the most recent message, if any.
func (c *Conversation) LastMessage() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1].clone(), true
}

// RecentTurns returns the trailing window of at most n messages as provider
// history, oldest first. n <= 0 returns the full history.
func (c *Conversation) RecentTurns(n int) []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return recentTurns(c.Messages, n)
}

// RecentTurnsBefore is RecentTurns over the first end messages only.
func (c *Conversation) RecentTurnsBefore(end, n int) []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if end > len(c.Messages) {
		end = len(c.Messages)
	}
	return recentTurns(c.Messages[:end], n)
}

func recentTurns(msgs []Message, n int) []Turn {
	start := 0
	if n > 0 && len(msgs) > n {
		start = len(msgs) - n
	}
	turns := make([]Turn, 0, len(msgs)-start)
	for _, m := range msgs[start:] {
		turns = append(turns, m.Turn())
	}
	return turns
}

// Snapshot captures the conversation fields recorded alongside new memories.
func (c *Conversation) Snapshot() ConversationSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ConversationSnapshot{
		ID:           c.ID,
		Title:        c.Title,
		Type:         c.Type,
		Participants: append([]string(nil), c.Participants...),
		MessageCount: len(c.Messages),
	}
}

// Clone returns a deep copy safe for independent mutation.
func (c *Conversation) Clone() *Conversation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clone := &Conversation{
		ID:           c.ID,
		Title:        c.Title,
		Type:         c.Type,
		Participants: append([]string(nil), c.Participants...),
		Messages:     make([]Message, len(c.Messages)),
		CreatedAt:    c.CreatedAt,
		Metadata:     c.Metadata,
	}
	clone.Metadata.Extensions = c.Metadata.Extensions.Clone()
	for i, m := range c.Messages {
		clone.Messages[i] = m.clone()
	}
	return clone
}

// conversationJSON mirrors the exported fields without the mutex.
type conversationJSON struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Type         ConversationType     `json:"type"`
	Participants []string             `json:"participants"`
	Messages     []Message            `json:"messages"`
	CreatedAt    time.Time            `json:"createdAt"`
	Metadata     ConversationMetadata `json:"metadata"`
}

// MarshalJSON serializes a consistent view of the conversation.
func (c *Conversation) MarshalJSON() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	msgs := c.Messages
	if msgs == nil {
		msgs = []Message{}
	}
	return json.Marshal(conversationJSON{
		ID:           c.ID,
		Title:        c.Title,
		Type:         c.Type,
		Participants: c.Participants,
		Messages:     msgs,
		CreatedAt:    c.CreatedAt,
		Metadata:     c.Metadata,
	})
}

// UnmarshalJSON restores a conversation; invariants are not re-validated here.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	var raw conversationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ID = raw.ID
	c.Title = raw.Title
	c.Type = raw.Type
	c.Participants = raw.Participants
	c.Messages = raw.Messages
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	c.CreatedAt = raw.CreatedAt
	c.Metadata = raw.Metadata
	return nil
}

// ConversationSnapshot is the conversation state captured at memory-store time.
type ConversationSnapshot struct {
	ID           string
	Title        string
	Type         ConversationType
	Participants []string
	MessageCount int
}
