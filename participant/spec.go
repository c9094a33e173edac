package participant

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
	"github.com/aibymlorg/managing-multiagent-intelligence/model/ollama"
)

// Kind selects the adapter family used for a participant.
type Kind string

// Supported adapter kinds.
const (
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
	KindOllama    Kind = "ollama"
	KindGemini    Kind = "gemini"
)

// Spec describes one participant.
type Spec struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"displayName"`
	Kind        Kind   `yaml:"kind"`
	Model       string `yaml:"model,omitempty"`
	BaseURL     string `yaml:"baseURL,omitempty"`
	// APIKeyEnv names an environment variable consulted when no credential was set.
	APIKeyEnv string `yaml:"apiKeyEnv,omitempty"`
	// DefaultCredential is used when neither an explicit nor an env credential exists.
	DefaultCredential string `yaml:"defaultCredential,omitempty"`
	// BearerEnv names an environment variable holding a bearer token (Ollama Cloud).
	BearerEnv string `yaml:"bearerEnv,omitempty"`

	// BearerToken is resolved from BearerEnv at dispatch time.
	BearerToken string `yaml:"-"`
}

// Validate checks the spec is usable by a Registry.
func (s Spec) Validate() error {
	if s.ID == "" {
		return &core.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	switch s.Kind {
	case KindOpenAI, KindAnthropic, KindOllama, KindGemini:
		return nil
	default:
		return &core.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q for participant %s", s.Kind, s.ID)}
	}
}

// DefaultSpecs returns the built-in participants in their canonical order.
func DefaultSpecs() []Spec {
	return []Spec{
		{ID: "openai", DisplayName: "OpenAI GPT", Kind: KindOpenAI, APIKeyEnv: "OPENAI_API_KEY"},
		{ID: "anthropic", DisplayName: "Claude (Anthropic)", Kind: KindAnthropic, APIKeyEnv: "ANTHROPIC_API_KEY"},
		{ID: "ollama", DisplayName: "Ollama (Local)", Kind: KindOllama, DefaultCredential: ollama.DefaultBaseURL},
		{ID: "ollamaCloud", DisplayName: "Ollama Cloud", Kind: KindOllama, DefaultCredential: "https://api.ollama.ai", BearerEnv: "OLLAMA_API_KEY"},
		{ID: "gemini", DisplayName: "Google Gemini", Kind: KindGemini, APIKeyEnv: "GEMINI_API_KEY"},
		{ID: "claude", DisplayName: "Claude API", Kind: KindAnthropic, APIKeyEnv: "ANTHROPIC_API_KEY"},
	}
}

type specFile struct {
	Participants []Spec `yaml:"participants"`
}

// LoadFile reads participant specs from a YAML document of the form
//
//	participants:
//	  - id: mistral
//	    displayName: Mistral (Local)
//	    kind: ollama
//	    model: mistral
//	    defaultCredential: http://localhost:11434
func LoadFile(path string) ([]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read participants file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML participant document.
func Parse(data []byte) ([]Spec, error) {
	var f specFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse participants: %w", err)
	}
	for _, s := range f.Participants {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Participants, nil
}
