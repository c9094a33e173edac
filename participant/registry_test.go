package participant

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
	"github.com/aibymlorg/managing-multiagent-intelligence/model"
)

type factoryCall struct {
	spec       Spec
	credential string
}

// newTestRegistry wires every kind to a MockModel factory that records its inputs.
func newTestRegistry(t *testing.T, env map[string]string) (*Registry, *[]factoryCall) {
	t.Helper()
	var calls []factoryCall
	fake := func(spec Spec, cred string) (model.Model, error) {
		calls = append(calls, factoryCall{spec: spec, credential: cred})
		return model.NewMockModel(spec.ID, string(spec.Kind)), nil
	}
	r, err := New(func(o *Options) {
		o.Factories = map[Kind]Factory{KindOpenAI: fake, KindAnthropic: fake, KindOllama: fake, KindGemini: fake}
		o.Getenv = func(k string) string { return env[k] }
	})
	require.NoError(t, err)
	return r, &calls
}

func TestDefaults(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	assert.Equal(t, []string{"openai", "anthropic", "ollama", "ollamaCloud", "gemini", "claude"}, r.IDs())
	assert.Equal(t, "Claude (Anthropic)", r.DisplayName("anthropic"))
	assert.Equal(t, "Ollama Cloud", r.DisplayName("ollamaCloud"))
	assert.Equal(t, "mystery", r.DisplayName("mystery"))
}

func TestDispatch_Unsupported(t *testing.T) {
	r, calls := newTestRegistry(t, nil)
	_, err := r.Dispatch("mystery")
	var ue *core.UnsupportedProviderError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "unsupported AI provider: mystery", err.Error())
	assert.Empty(t, *calls)
}

func TestDispatch_MissingCredential(t *testing.T) {
	r, calls := newTestRegistry(t, nil)
	_, err := r.Dispatch("openai")
	var ce *core.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "openai", ce.ParticipantID)
	assert.Empty(t, *calls)

	r.SetCredential("openai", "   ")
	_, err = r.Dispatch("openai")
	assert.True(t, errors.As(err, &ce))
}

func TestDispatch_CredentialResolution(t *testing.T) {
	r, calls := newTestRegistry(t, map[string]string{"GEMINI_API_KEY": "env-key", "OLLAMA_API_KEY": "cloud-token"})

	_, err := r.Dispatch("gemini")
	require.NoError(t, err)
	_, err = r.Dispatch("ollama")
	require.NoError(t, err)
	_, err = r.Dispatch("ollamaCloud")
	require.NoError(t, err)

	require.Len(t, *calls, 3)
	assert.Equal(t, "env-key", (*calls)[0].credential)
	assert.Equal(t, "http://localhost:11434", (*calls)[1].credential)
	assert.Equal(t, "https://api.ollama.ai", (*calls)[2].credential)
	assert.Equal(t, "cloud-token", (*calls)[2].spec.BearerToken)

	r.SetCredential("gemini", "explicit")
	_, err = r.Dispatch("gemini")
	require.NoError(t, err)
	assert.Equal(t, "explicit", (*calls)[3].credential)
}

func TestDispatch_CachesPerCredential(t *testing.T) {
	r, calls := newTestRegistry(t, nil)
	r.SetCredential("openai", "k1")

	m1, err := r.Dispatch("openai")
	require.NoError(t, err)
	m2, err := r.Dispatch("openai")
	require.NoError(t, err)
	assert.Same(t, m1, m2)
	assert.Len(t, *calls, 1)

	r.SetCredential("openai", "k2")
	m3, err := r.Dispatch("openai")
	require.NoError(t, err)
	assert.NotSame(t, m1, m3)
	assert.Len(t, *calls, 2)
}

func TestRegisterModel(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	mock := model.NewMockModel("m", "mock")
	r.RegisterModel("mock", "Mock AI", mock)

	m, err := r.Dispatch("mock")
	require.NoError(t, err)
	assert.Same(t, mock, m)
	assert.Equal(t, "Mock AI", r.DisplayName("mock"))
	assert.Equal(t, "mock", r.IDs()[len(r.IDs())-1])
}

func TestCredentialsCopy(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	r.SetCredentials(map[string]string{"openai": "a", "gemini": ""})
	creds := r.Credentials()
	assert.Equal(t, map[string]string{"openai": "a"}, creds)
	creds["openai"] = "mutated"
	assert.Equal(t, "a", r.Credentials()["openai"])
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "participants.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
participants:
  - id: mistral
    displayName: Mistral (Local)
    kind: ollama
    model: mistral
    defaultCredential: http://localhost:11434
  - id: gpt4o
    displayName: GPT-4o
    kind: openai
    model: gpt-4o
    apiKeyEnv: OPENAI_API_KEY
`), 0o600))

	specs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, Spec{ID: "mistral", DisplayName: "Mistral (Local)", Kind: KindOllama, Model: "mistral", DefaultCredential: "http://localhost:11434"}, specs[0])
	assert.Equal(t, "OPENAI_API_KEY", specs[1].APIKeyEnv)

	r, calls := newTestRegistry(t, nil)
	for _, s := range specs {
		require.NoError(t, r.Register(s))
	}
	_, err = r.Dispatch("mistral")
	require.NoError(t, err)
	assert.Equal(t, "mistral", (*calls)[0].spec.Model)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("participants:\n  - id: x\n    kind: telepathy\n"))
	var ve *core.ValidationError
	require.True(t, errors.As(err, &ve))

	_, err = Parse([]byte("participants: [unterminated"))
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
