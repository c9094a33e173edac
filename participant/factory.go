package participant

import (
	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/aibymlorg/managing-multiagent-intelligence/model"
	"github.com/aibymlorg/managing-multiagent-intelligence/model/anthropic"
	"github.com/aibymlorg/managing-multiagent-intelligence/model/gemini"
	"github.com/aibymlorg/managing-multiagent-intelligence/model/ollama"
	"github.com/aibymlorg/managing-multiagent-intelligence/model/openai"
)

// Factory builds an adapter for a participant from its spec and resolved credential.
type Factory func(spec Spec, credential string) (model.Model, error)

// DefaultFactories returns the factories for every supported Kind.
func DefaultFactories() map[Kind]Factory {
	return map[Kind]Factory{
		KindOpenAI:    newOpenAI,
		KindAnthropic: newAnthropic,
		KindOllama:    newOllama,
		KindGemini:    newGemini,
	}
}

func newOpenAI(spec Spec, credential string) (model.Model, error) {
	return openai.NewModel(func(o *openai.Options) {
		o.ProviderID = spec.ID
		o.APIKey = credential
		if spec.Model != "" {
			o.Model = spec.Model
		}
		if spec.BaseURL != "" {
			o.BaseURL = spec.BaseURL
		}
	}), nil
}

func newAnthropic(spec Spec, credential string) (model.Model, error) {
	return anthropic.NewModel(func(o *anthropic.Options) {
		o.ProviderID = spec.ID
		o.APIKey = credential
		if spec.Model != "" {
			o.Model = anthropicsdk.Model(spec.Model)
		}
		if spec.BaseURL != "" {
			o.BaseURL = spec.BaseURL
		}
	}), nil
}

// newOllama treats the credential as the daemon base URL.
func newOllama(spec Spec, credential string) (model.Model, error) {
	return ollama.NewModel(func(o *ollama.Options) {
		o.ProviderID = spec.ID
		o.BaseURL = credential
		o.BearerToken = spec.BearerToken
		if spec.Model != "" {
			o.Model = spec.Model
		}
	}), nil
}

func newGemini(spec Spec, credential string) (model.Model, error) {
	return gemini.NewModel(func(o *gemini.Options) {
		o.ProviderID = spec.ID
		o.APIKey = credential
		if spec.Model != "" {
			o.Model = spec.Model
		}
		if spec.BaseURL != "" {
			o.BaseURL = spec.BaseURL
		}
	}), nil
}
