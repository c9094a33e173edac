package memory

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

// ExportFormat is the format marker carried by memory exports.
const ExportFormat = "multi-ai-memory-export-v1"

// Snapshot is the serializable memory export document.
type Snapshot struct {
	AIMemories State             `json:"aiMemories"`
	Config     core.MemoryConfig `json:"config"`
	ExportedAt time.Time         `json:"exportedAt"`
	Format     string            `json:"format"`
}

// ExportAll returns a snapshot of every participant's records and the
// current configuration.
func (m *InMemoryStore) ExportAll() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		AIMemories: m.snapshotLocked(),
		Config:     m.opts.Config,
		ExportedAt: m.opts.Now().UTC(),
		Format:     ExportFormat,
	}
}

// ExportJSON renders ExportAll as indented JSON.
func (m *InMemoryStore) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(m.ExportAll(), "", "  ")
}

// ImportMerge prepends copies of the snapshot's records, under freshly
// assigned ids, ahead of the existing records of each participant. It returns
// the number of participants imported. A snapshot without the expected format
// marker is rejected with a FormatError and leaves the store untouched.
func (m *InMemoryStore) ImportMerge(snap Snapshot) (int, error) {
	if snap.Format != ExportFormat {
		return 0, &core.FormatError{Expected: ExportFormat, Got: snap.Format}
	}

	ids := make([]string, 0, len(snap.AIMemories))
	for id := range snap.AIMemories {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	m.mu.Lock()
	importedAt := m.opts.Now().UTC()
	for _, id := range ids {
		incoming := snap.AIMemories[id]
		copies := make([]core.MemoryRecord, 0, len(incoming)+len(m.records[id]))
		for _, rec := range incoming {
			rec.ID = m.opts.NewID()
			if rec.ParticipantID == "" {
				rec.ParticipantID = id
			}
			ts := importedAt
			rec.Metadata.ImportedAt = &ts
			copies = append(copies, rec)
		}
		m.records[id] = append(copies, m.records[id]...)
	}
	snapshot, version := m.commitLocked()
	m.mu.Unlock()

	m.opts.Logger.Info("Memories imported", "participants", len(ids))

	return len(ids), m.persist(snapshot, version)
}

// ImportJSON decodes a memory export document and merges it. Undecodable
// payloads are reported as FormatError.
func (m *InMemoryStore) ImportJSON(data []byte) (int, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return 0, &core.FormatError{Expected: ExportFormat, Err: err}
	}
	return m.ImportMerge(snap)
}
