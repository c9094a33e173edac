// Package gemini provides a model.Model backed by the Google Gemini
// generateContent REST endpoint.
package gemini

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

// DefaultBaseURL is the public Generative Language API root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Options configure the Gemini adapter.
type Options struct {
	ProviderID      string
	Model           string
	APIKey          string
	BaseURL         string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
}

// Model calls POST {BaseURL}/models/{Model}:generateContent?key={APIKey}.
type Model struct {
	client *resty.Client
	opts   Options
}

var _ model.Model = (*Model)(nil)

// NewModel creates a new Gemini model.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		ProviderID:      "gemini",
		Model:           "gemini-pro",
		BaseURL:         DefaultBaseURL,
		Temperature:     0.7,
		MaxOutputTokens: 1000,
		Timeout:         2 * time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(opts.Timeout)

	return &Model{client: c, opts: opts}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Complete implements model.Model. Assistant turns are sent with the "model" role.
func (m *Model) Complete(ctx context.Context, history []core.Turn, prompt string) (string, error) {
	contents := make([]content, 0, len(history)+1)
	for _, t := range history {
		role := "user"
		if t.Role == core.RoleAssistant {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: t.Content}}})
	}
	contents = append(contents, content{Role: "user", Parts: []part{{Text: prompt}}})

	resp, err := m.client.R().
		SetContext(ctx).
		SetPathParam("model", m.opts.Model).
		SetQueryParam("key", m.opts.APIKey).
		SetBody(&generateRequest{
			Contents:         contents,
			GenerationConfig: generationConfig{Temperature: m.opts.Temperature, MaxOutputTokens: m.opts.MaxOutputTokens},
		}).
		Post("/models/{model}:generateContent")
	if err != nil {
		return "", &core.ProviderError{ProviderID: m.opts.ProviderID, Message: fmt.Sprintf("gemini request: %v", err), Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &core.ProviderError{ProviderID: m.opts.ProviderID, StatusCode: resp.StatusCode(), Message: resp.Status()}
	}

	var gr generateResponse
	if err := json.Unmarshal(resp.Body(), &gr); err != nil {
		return "", &core.ProviderError{ProviderID: m.opts.ProviderID, Message: "decode response", Err: err}
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", &core.ProviderError{ProviderID: m.opts.ProviderID, Message: "response contained no candidates"}
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini"}
}
