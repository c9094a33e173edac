package core

// MemoryStore defines per-participant storage and keyword relevance search of
// memory records. The orchestrator depends only on this contract.
type MemoryStore interface {
	// Store creates and prepends a record. It returns (nil, nil) when memory is
	// disabled or the content is blank.
	Store(participantID, content string, meta StoreMetadata) (*MemoryRecord, error)
	// Search returns records scoring at least the configured sensitivity,
	// best first. limit <= 0 selects the configured maximum.
	Search(participantID, query string, limit int) ([]RelevanceResult, error)
	// Delete removes a record by id; unknown ids are a no-op.
	Delete(participantID, recordID string) error
	// Clear empties a participant's records.
	Clear(participantID string) error
	// Config returns the configuration in effect.
	Config() MemoryConfig
}
