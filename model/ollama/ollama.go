// Package ollama provides a model.Model backed by the Ollama chat API. The
// same adapter serves a local daemon and Ollama Cloud; the latter only adds a
// bearer token.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
	"github.com/aibymlorg/managing-multiagent-intelligence/model"
)

// DefaultBaseURL is the address of a local Ollama daemon.
const DefaultBaseURL = "http://localhost:11434"

// Options configure the Ollama adapter.
type Options struct {
	ProviderID string
	Model      string
	BaseURL    string
	// BearerToken is sent as Authorization header when set (Ollama Cloud).
	BearerToken string
	Timeout     time.Duration
}

// Model calls POST {BaseURL}/api/chat with streaming disabled.
type Model struct {
	client *resty.Client
	opts   Options
}

var _ model.Model = (*Model)(nil)

// NewModel creates a new Ollama model.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		ProviderID: "ollama",
		Model:      "llama2",
		BaseURL:    DefaultBaseURL,
		Timeout:    5 * time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(opts.Timeout)
	if opts.BearerToken != "" {
		c.SetAuthToken(opts.BearerToken)
	}

	return &Model{client: c, opts: opts}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message *chatMessage `json:"message"`
}

// Complete implements model.Model.
func (m *Model) Complete(ctx context.Context, history []core.Turn, prompt string) (string, error) {
	msgs := make([]chatMessage, 0, len(history)+1)
	for _, t := range history {
		msgs = append(msgs, chatMessage{Role: string(t.Role), Content: t.Content})
	}
	msgs = append(msgs, chatMessage{Role: string(core.RoleUser), Content: prompt})

	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(&chatRequest{Model: m.opts.Model, Messages: msgs}).
		Post("/api/chat")
	if err != nil {
		return "", &core.ProviderError{ProviderID: m.opts.ProviderID, Message: fmt.Sprintf("ollama request: %v", err), Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &core.ProviderError{ProviderID: m.opts.ProviderID, StatusCode: resp.StatusCode(), Message: resp.Status()}
	}

	var cr chatResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return "", &core.ProviderError{ProviderID: m.opts.ProviderID, Message: "decode response", Err: err}
	}
	if cr.Message == nil {
		return "", &core.ProviderError{ProviderID: m.opts.ProviderID, Message: "response missing message"}
	}
	return cr.Message.Content, nil
}

// Info returns metadata describing this Ollama model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "ollama"}
}
