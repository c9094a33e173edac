package core

import (
	"fmt"
	"time"
)

// DefaultCategory is the category assigned to memories stored without one.
const DefaultCategory = "general"

// Categories used by the orchestrator when auto-storing.
const (
	CategoryUserMessage = "user_message"
	CategoryAIResponse  = "ai_response"
)

// MemoryMetadata is the typed metadata schema of a memory record.
type MemoryMetadata struct {
	MessageCount      int        `json:"messageCount"`
	ConversationTitle string     `json:"conversationTitle"`
	Participants      []string   `json:"participants"`
	Sender            string     `json:"sender,omitempty"`
	ImportedAt        *time.Time `json:"importedAt,omitempty"`
	Extensions        Extensions `json:"extensions,omitempty"`
}

// MemoryRecord is a stored snippet of past conversation content owned by one
// participant. Records are immutable after creation.
type MemoryRecord struct {
	ID               string           `json:"id"`
	ParticipantID    string           `json:"aiId"`
	Content          string           `json:"content"`
	CreatedAt        time.Time        `json:"createdAt"`
	Keywords         []string         `json:"keywords"`
	ConversationID   string           `json:"conversationId,omitempty"`
	ConversationType ConversationType `json:"conversationType"`
	Category         string           `json:"type"`
	Metadata         MemoryMetadata   `json:"metadata"`
}

// RelevanceResult is a memory record annotated with its relevance score for a
// single search call.
type RelevanceResult struct {
	MemoryRecord
	RelevanceScore float64 `json:"relevanceScore"`
}

// StoreMetadata is the caller-supplied context of a Store call.
type StoreMetadata struct {
	Category     string // defaults to DefaultCategory
	Sender       string
	Conversation *ConversationSnapshot // nil when stored outside a conversation
	Extensions   Extensions
}

// MemoryConfig is the process-wide memory configuration. It is read-only to
// the core during a single operation.
type MemoryConfig struct {
	UserID              string  `json:"userId"`
	Enabled             bool    `json:"enabled"`
	AutoStore           bool    `json:"autoStore"`
	MaxRelevantMemories int     `json:"maxRelevantMemories"`
	SearchSensitivity   float64 `json:"searchSensitivity"`
	MaxMemoryAgeDays    int     `json:"maxMemoryAge"` // 0 = no expiry
	SeparateMemories    bool    `json:"separateAIMemories"`
	CrossSharingEnabled bool    `json:"crossAIMemorySharing"`
}

// DefaultMemoryConfig returns the configuration used when none was persisted.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		UserID:              "default-user",
		Enabled:             false,
		AutoStore:           true,
		MaxRelevantMemories: 5,
		SearchSensitivity:   0.3,
		MaxMemoryAgeDays:    30,
		SeparateMemories:    true,
		CrossSharingEnabled: false,
	}
}

// Validate checks the field ranges.
func (c MemoryConfig) Validate() error {
	if c.MaxRelevantMemories < 1 {
		return &ValidationError{Field: "maxRelevantMemories", Reason: fmt.Sprintf("must be >= 1, got %d", c.MaxRelevantMemories)}
	}
	if c.SearchSensitivity < 0 || c.SearchSensitivity > 1 {
		return &ValidationError{Field: "searchSensitivity", Reason: fmt.Sprintf("must be within [0,1], got %g", c.SearchSensitivity)}
	}
	if c.MaxMemoryAgeDays < 0 {
		return &ValidationError{Field: "maxMemoryAge", Reason: fmt.Sprintf("must be >= 0, got %d", c.MaxMemoryAgeDays)}
	}
	return nil
}
