package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a conversation, record or persisted document
// does not exist.
var ErrNotFound = errors.New("not found")

// ConfigurationError reports a participant that cannot be called because its
// credential is missing. It is raised before any network interaction.
type ConfigurationError struct {
	ParticipantID string
	Reason        string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("api key not configured for %s", e.ParticipantID)
	}
	return fmt.Sprintf("configuration error for %s: %s", e.ParticipantID, e.Reason)
}

// ProviderError reports a failed upstream call: transport failure, non-success
// HTTP status or a malformed response body.
type ProviderError struct {
	ProviderID string
	StatusCode int // 0 when no HTTP response was received
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s api error (status %d): %s", e.ProviderID, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s api error: %s", e.ProviderID, e.Message)
}

// Unwrap exposes the underlying transport or SDK error.
func (e *ProviderError) Unwrap() error { return e.Err }

// UnsupportedProviderError is returned by dispatch for unregistered participant ids.
type UnsupportedProviderError struct {
	ProviderID string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported AI provider: %s", e.ProviderID)
}

// FormatError is returned when an import payload is unreadable or carries a
// missing / unexpected format marker.
type FormatError struct {
	Expected string
	Got      string
	Err      error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s payload: %v", e.Expected, e.Err)
	}
	return fmt.Sprintf("invalid format marker %q, expected %q", e.Got, e.Expected)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ValidationError reports unmet preconditions on caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
