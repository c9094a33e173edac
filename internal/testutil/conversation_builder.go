package testutil

import (
	"fmt"
	"time"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

// ConversationBuilder helps construct conversations with fluent chaining.
// Example:
//
//	conv := NewConversationBuilder("c1").Participants("openai", "anthropic").
//		UserText("hi").AssistantText("openai", "hello").Build()
//
// Type defaults to single for one participant, bilateral for two and
// multilateral otherwise. Build panics on invariant violations.
type ConversationBuilder struct {
	id           string
	title        string
	typ          core.ConversationType
	participants []string
	messages     []core.Message
	createdAt    time.Time
}

// NewConversationBuilder initializes a builder for the given id.
func NewConversationBuilder(id string) *ConversationBuilder {
	return &ConversationBuilder{id: id, createdAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Participants sets the participant ids (chainable).
func (b *ConversationBuilder) Participants(ids ...string) *ConversationBuilder {
	b.participants = ids
	return b
}

// Type overrides the inferred conversation type (chainable).
func (b *ConversationBuilder) Type(t core.ConversationType) *ConversationBuilder { b.typ = t; return b }

// Title sets the title (chainable).
func (b *ConversationBuilder) Title(t string) *ConversationBuilder { b.title = t; return b }

// UserText appends a user message (chainable).
func (b *ConversationBuilder) UserText(text string) *ConversationBuilder {
	b.messages = append(b.messages, NewMessageBuilder().User(text).Build())
	return b
}

// AssistantText appends an assistant message from sender (chainable).
func (b *ConversationBuilder) AssistantText(sender, text string) *ConversationBuilder {
	b.messages = append(b.messages, NewMessageBuilder().From(sender).Assistant(text).Build())
	return b
}

// Message appends an arbitrary message (chainable).
func (b *ConversationBuilder) Message(m core.Message) *ConversationBuilder {
	b.messages = append(b.messages, m)
	return b
}

// Build constructs the conversation.
func (b *ConversationBuilder) Build() *core.Conversation {
	typ := b.typ
	if typ == "" {
		switch len(b.participants) {
		case 1:
			typ = core.ConversationSingle
		case 2:
			typ = core.ConversationBilateral
		default:
			typ = core.ConversationMultilateral
		}
	}
	conv, err := core.NewConversation(b.id, typ, b.participants)
	if err != nil {
		panic(fmt.Sprintf("testutil: invalid conversation: %v", err))
	}
	conv.CreatedAt = b.createdAt
	if b.title != "" {
		conv.SetTitle(b.title)
	}
	conv.Append(b.messages...)
	return conv
}
