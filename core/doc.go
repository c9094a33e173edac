// Package core provides the foundational domain types and contracts shared by
// the orchestrator, the memory layer and the provider adapters:
//
//   - Conversations and their append-only Message history
//   - Memory records, relevance results and the process-wide MemoryConfig
//   - The MemoryStore and KVStore contracts implemented by the memory and
//     storage packages
//   - The error taxonomy surfaced to callers (ConfigurationError,
//     ProviderError, UnsupportedProviderError, FormatError, ValidationError)
//
// The package keeps implementation concerns (persistence backends, provider
// wire formats, turn sequencing) out of scope so concrete packages can depend
// on it without introducing cycles.
package core
