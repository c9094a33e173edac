package testutil

import (
	"time"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().From("openai").Assistant("hello").Build()
type MessageBuilder struct {
	msg core.Message
}

// NewMessageBuilder creates a builder for a user message sent by "user".
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{msg: core.Message{
		Role:      core.RoleUser,
		Sender:    core.SenderUser,
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
}

// User sets role user and the content (chainable).
func (b *MessageBuilder) User(text string) *MessageBuilder {
	b.msg.Role = core.RoleUser
	b.msg.Content = text
	return b
}

// Assistant sets role assistant and the content (chainable).
func (b *MessageBuilder) Assistant(text string) *MessageBuilder {
	b.msg.Role = core.RoleAssistant
	b.msg.Content = text
	return b
}

// From sets the sender (chainable).
func (b *MessageBuilder) From(sender string) *MessageBuilder { b.msg.Sender = sender; return b }

// At sets the timestamp (chainable).
func (b *MessageBuilder) At(ts time.Time) *MessageBuilder { b.msg.Timestamp = ts; return b }

// Error marks the message as a synthetic error notice (chainable).
func (b *MessageBuilder) Error() *MessageBuilder { b.msg.IsError = true; return b }

// Build returns the message.
func (b *MessageBuilder) Build() core.Message { return b.msg }
