package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "ollama", "gemini", ...
}

// Model is the minimal interface required by the orchestrator. Complete sends
// the recent history followed by prompt as the final user turn and returns
// the generated text. Failures are reported as *core.ProviderError.
type Model interface {
	Complete(ctx context.Context, history []core.Turn, prompt string) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Call records a single invocation of MockModel.
type Call struct {
	History []core.Turn
	Prompt  string
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
type MockModel struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	fallback  func(prompt string) string
	err       error
	calls     []Call
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// SetFallback sets the response function used for prompts without a canned response.
func (m *MockModel) SetFallback(fn func(prompt string) string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = fn
}

// FailWith makes every subsequent call fail with err. Pass nil to recover.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Complete implements Model.
func (m *MockModel) Complete(_ context.Context, history []core.Turn, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{History: append([]core.Turn(nil), history...), Prompt: prompt})
	if m.err != nil {
		return "", m.err
	}
	if r, ok := m.responses[prompt]; ok {
		return r, nil
	}
	if m.fallback != nil {
		return m.fallback(prompt), nil
	}
	return fmt.Sprintf("Mock response to: %s", prompt), nil
}

// Calls returns a copy of the recorded invocations.
func (m *MockModel) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
