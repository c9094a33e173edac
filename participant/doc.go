// Package participant maps participant identifiers to display names and
// provider adapters.
//
// A Registry holds one Spec per participant plus the credential configured
// for it. Dispatch resolves the adapter for a participant, failing with
// core.UnsupportedProviderError for unknown ids and core.ConfigurationError
// when no credential is available. Adapters are built lazily through a
// per-Kind Factory and cached until the credential changes.
//
// DefaultSpecs describes the six built-in participants; additional ones can be
// declared in a YAML file and loaded with LoadFile.
package participant
