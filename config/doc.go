// Package config loads process configuration from the environment, optionally
// seeded from .env files. Variables use the MULTIAI_ prefix; every tagged
// field also falls back to its unprefixed name, so OPENAI_API_KEY works as
// well as MULTIAI_OPENAI_API_KEY.
package config
