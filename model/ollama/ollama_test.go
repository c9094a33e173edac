package ollama

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

func TestComplete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama2","message":{"role":"assistant","content":"Hello from llama"},"done":true}`))
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) { o.BaseURL = srv.URL + "/" })
	out, err := m.Complete(context.Background(), []core.Turn{{Role: core.RoleAssistant, Content: "prev"}}, "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello from llama", out)

	assert.Equal(t, "llama2", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "assistant", got.Messages[0].Role)
	assert.Equal(t, chatMessage{Role: "user", Content: "Hi"}, got.Messages[1])
}

func TestComplete_BearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer cloud-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"ok"}}`))
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.ProviderID = "ollamaCloud"
		o.BaseURL = srv.URL
		o.BearerToken = "cloud-key"
	})
	out, err := m.Complete(context.Background(), nil, "Hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "non-2xx", status: http.StatusInternalServerError, body: `{"error":"model not found"}`, wantStatus: 500},
		{name: "malformed", status: http.StatusOK, body: `not json`},
		{name: "missing message", status: http.StatusOK, body: `{"done":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			m := NewModel(func(o *Options) { o.BaseURL = srv.URL })
			_, err := m.Complete(context.Background(), nil, "Hi")
			var pe *core.ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "ollama", pe.ProviderID)
			assert.Equal(t, tt.wantStatus, pe.StatusCode)
		})
	}
}
