// Package memory contains the keyword relevance engine and the concrete
// MemoryStore implementation. The store interface and record types reside in
// the core package; depend on core.MemoryStore in your code and select an
// implementation (like the in-memory store below) at wiring time.
//
// Retrieval is an intentionally cheap keyword-overlap heuristic rather than
// embedding search so the engine runs locally without an index service.
package memory
