package gemini

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
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello from Gemini"}]}}]}`))
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.BaseURL = srv.URL
		o.APIKey = "g-key"
	})
	out, err := m.Complete(context.Background(), []core.Turn{{Role: core.RoleAssistant, Content: "prev"}}, "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello from Gemini", out)

	require.Len(t, got.Contents, 2)
	assert.Equal(t, "model", got.Contents[0].Role)
	assert.Equal(t, "Hi", got.Contents[1].Parts[0].Text)
	assert.Equal(t, 1000, got.GenerationConfig.MaxOutputTokens)
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":{"code":403}}`, wantStatus: 403},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`},
		{name: "malformed", status: http.StatusOK, body: `{`},
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
			assert.Equal(t, "gemini", pe.ProviderID)
			assert.Equal(t, tt.wantStatus, pe.StatusCode)
		})
	}
}
