// Package model defines the provider-agnostic adapter contract used by the
// orchestrator to obtain one completion per participant turn.
//
// Concrete adapters live in sub-packages:
//   - model/openai: OpenAI Chat Completions via github.com/openai/openai-go
//   - model/anthropic: Anthropic Messages via github.com/anthropics/anthropic-sdk-go
//   - model/ollama: Ollama /api/chat (local or cloud) via resty
//   - model/gemini: Google Gemini generateContent via resty
//
// MockModel is a lightweight in-memory Model for tests and examples.
package model
