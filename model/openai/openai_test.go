package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestModel(t *testing.T, h http.HandlerFunc) *Model {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewModel(func(o *Options) {
		o.APIKey = "sk-test"
		o.BaseURL = srv.URL + "/"
	})
}

func TestComplete(t *testing.T) {
	var got chatRequest
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Hi from GPT"}}]}`))
	})

	out, err := m.Complete(context.Background(), []core.Turn{
		{Role: core.RoleUser, Content: "earlier question"},
		{Role: core.RoleAssistant, Content: "earlier answer"},
	}, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi from GPT", out)

	require.Len(t, got.Messages, 3)
	assert.Equal(t, "gpt-4", got.Model)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "user", got.Messages[2].Role)
	assert.Equal(t, "Hello", got.Messages[2].Content)
}

func TestComplete_StatusError(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	})

	_, err := m.Complete(context.Background(), nil, "Hello")
	var pe *core.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "openai", pe.ProviderID)
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
}

func TestComplete_NoChoices(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4","choices":[]}`))
	})

	_, err := m.Complete(context.Background(), nil, "Hello")
	var pe *core.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "no choices returned", pe.Message)
}
