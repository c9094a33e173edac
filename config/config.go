package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/aibymlorg/managing-multiagent-intelligence/logging"
	"github.com/aibymlorg/managing-multiagent-intelligence/orchestrator"
)

// Prefix of all configuration variables.
const Prefix = "MULTIAI"

// Config holds the process configuration.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"` // text, json or zerolog

	// DBPath is the SQLite database file; ":memory:" keeps state in process.
	DBPath           string `envconfig:"DB_PATH" default:"multiai.db"`
	ParticipantsFile string `envconfig:"PARTICIPANTS_FILE" default:""`

	FanOut             string        `envconfig:"FAN_OUT" default:"sequential"`
	OnFailure          string        `envconfig:"ON_FAILURE" default:"abort"`
	CallDelay          time.Duration `envconfig:"CALL_DELAY" default:"500ms"`
	RoundDelay         time.Duration `envconfig:"ROUND_DELAY" default:"1s"`
	HistoryWindow      int           `envconfig:"HISTORY_WINDOW" default:"10"`
	MaxParallel        int           `envconfig:"MAX_PARALLEL" default:"4"`
	MaxAutoRounds      int           `envconfig:"MAX_AUTO_ROUNDS" default:"5"`
	AutoProgressRounds int           `envconfig:"AUTO_PROGRESS_ROUNDS" default:"0"`

	// Provider credentials. For Ollama the credential is the base URL.
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	OllamaURL       string `envconfig:"OLLAMA_URL"`
	OllamaCloudURL  string `envconfig:"OLLAMA_CLOUD_URL"`
}

// Load reads the given .env files (".env" when none are given; missing files
// are ignored), then processes the environment and validates the result.
// Variables already present in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	switch c.LogFormat {
	case "text", "json", "zerolog":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	if _, err := orchestrator.ParseFanOut(c.FanOut); err != nil {
		return fmt.Errorf("invalid FAN_OUT: %w", err)
	}
	if _, err := orchestrator.ParseFailurePolicy(c.OnFailure); err != nil {
		return fmt.Errorf("invalid ON_FAILURE: %w", err)
	}
	if c.CallDelay < 0 || c.RoundDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.HistoryWindow < 1 {
		return fmt.Errorf("HISTORY_WINDOW must be at least 1, got %d", c.HistoryWindow)
	}
	if c.MaxAutoRounds < 1 {
		return fmt.Errorf("MAX_AUTO_ROUNDS must be at least 1, got %d", c.MaxAutoRounds)
	}
	if c.AutoProgressRounds < 0 || c.MaxParallel < 0 {
		return fmt.Errorf("AUTO_PROGRESS_ROUNDS and MAX_PARALLEL must not be negative")
	}
	return nil
}

// Credentials returns the non-empty provider credentials keyed by participant id.
// The claude participant shares the Anthropic key.
func (c *Config) Credentials() map[string]string {
	all := map[string]string{
		"openai":      c.OpenAIAPIKey,
		"anthropic":   c.AnthropicAPIKey,
		"claude":      c.AnthropicAPIKey,
		"gemini":      c.GeminiAPIKey,
		"ollama":      c.OllamaURL,
		"ollamaCloud": c.OllamaCloudURL,
	}
	out := make(map[string]string, len(all))
	for k, v := range all {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// OrchestratorOptions applies the orchestration settings. Call after Validate.
func (c *Config) OrchestratorOptions() func(o *orchestrator.Options) {
	return func(o *orchestrator.Options) {
		o.FanOut, _ = orchestrator.ParseFanOut(c.FanOut)
		o.OnFailure, _ = orchestrator.ParseFailurePolicy(c.OnFailure)
		o.CallDelay = c.CallDelay
		o.RoundDelay = c.RoundDelay
		o.HistoryWindow = c.HistoryWindow
		o.MaxParallel = c.MaxParallel
	}
}

// Logger builds the configured logger writing to stderr.
func (c *Config) Logger() logging.Logger {
	level, _ := logging.ParseLevel(c.LogLevel)
	if c.LogFormat == "zerolog" {
		return logging.NewZerologLogger(os.Stderr, level, "multiai")
	}
	return logging.NewSlogLogger(level, c.LogFormat, false).WithComponent("multiai")
}
