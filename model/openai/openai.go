// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API. It maps the orchestrator's history turns onto chat
// messages and upstream failures onto core.ProviderError.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
	"github.com/aibymlorg/managing-multiagent-intelligence/model"
)

// Options configure the OpenAI model adapter.
type Options struct {
	ProviderID          string
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
	BaseURL             string
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

var _ model.Model = (*Model)(nil)

func defaultOptions() Options {
	return Options{
		ProviderID:          "openai",
		Model:               openai.ChatModelGPT4,
		Temperature:         0.7,
		MaxCompletionTokens: 1000,
	}
}

// NewModel creates a new OpenAI model using the official client. Retries are
// disabled; a failed call surfaces immediately to the orchestrator.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(clientOpts...)
	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new OpenAI model from an existing client
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Complete implements model.Model.
func (m *Model) Complete(ctx context.Context, history []core.Turn, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(history, prompt),
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", m.providerError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &core.ProviderError{ProviderID: m.opts.ProviderID, Message: "no choices returned"}
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(history []core.Turn, prompt string) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	for _, t := range history {
		if t.Role == core.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(t.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(t.Content))
	}
	return append(messages, openai.UserMessage(prompt))
}

func (m *Model) providerError(err error) error {
	pe := &core.ProviderError{ProviderID: m.opts.ProviderID, Message: err.Error(), Err: err}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		pe.StatusCode = apiErr.StatusCode
	}
	return pe
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai"}
}
