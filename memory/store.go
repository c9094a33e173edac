package memory

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
	"github.com/aibymlorg/managing-multiagent-intelligence/logging"
)

// State maps a participant id to its records, newest first.
type State map[string][]core.MemoryRecord

// Stats summarizes the records held for one participant.
type Stats struct {
	Total     int `json:"total"`
	StorageKB int `json:"storageUsed"` // approximate serialized size in KiB
}

// Options configures an InMemoryStore.
type Options struct {
	// Config is the initial memory configuration.
	Config core.MemoryConfig
	// Now supplies timestamps (defaults to time.Now).
	Now func() time.Time
	// NewID generates record ids (defaults to time-ordered UUIDv7).
	NewID func() string
	// Persist, when set, receives a snapshot of the full state after every
	// mutation. Errors are returned to the caller of the mutating operation.
	Persist func(State) error
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// InMemoryStore is the process-local MemoryStore. It offers per-participant,
// newest-first record logs with keyword relevance search, age-based expiry on
// load, import/export merge and storage statistics.
//
// Concurrency: protected by RWMutex. Persistence happens outside the lock on a
// versioned snapshot copy; persistMu orders the writes so the hook never sees
// an older snapshot after a newer one.
type InMemoryStore struct {
	mu      sync.RWMutex
	opts    Options
	records State
	stats   map[string]Stats
	version uint64 // bumped by every commit, guarded by mu

	persistMu sync.Mutex
	persisted uint64 // version last handed to Persist, guarded by persistMu
}

var _ core.MemoryStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty memory store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{
		Config: core.DefaultMemoryConfig(),
		Now:    time.Now,
		NewID:  newRecordID,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &InMemoryStore{
		opts:    opts,
		records: State{},
		stats:   map[string]Stats{},
	}
}

func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Config returns the configuration in effect.
func (m *InMemoryStore) Config() core.MemoryConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.opts.Config
}

// SetConfig replaces the configuration after validating it.
func (m *InMemoryStore) SetConfig(cfg core.MemoryConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts.Config = cfg
	return nil
}

// Store creates a record for participantID and prepends it. It is a no-op
// returning (nil, nil) when memory is disabled or content is blank.
func (m *InMemoryStore) Store(participantID, content string, meta core.StoreMetadata) (*core.MemoryRecord, error) {
	trimmed := strings.TrimSpace(content)

	m.mu.Lock()
	if !m.opts.Config.Enabled || trimmed == "" {
		m.mu.Unlock()
		return nil, nil
	}

	rec := core.MemoryRecord{
		ID:               m.opts.NewID(),
		ParticipantID:    participantID,
		Content:          trimmed,
		CreatedAt:        m.opts.Now().UTC(),
		Keywords:         ExtractKeywords(content),
		ConversationType: core.ConversationSingle,
		Category:         meta.Category,
		Metadata: core.MemoryMetadata{
			ConversationTitle: "Unknown",
			Participants:      []string{participantID},
			Sender:            meta.Sender,
			Extensions:        meta.Extensions.Clone(),
		},
	}
	if rec.Category == "" {
		rec.Category = core.DefaultCategory
	}
	if conv := meta.Conversation; conv != nil {
		rec.ConversationID = conv.ID
		rec.ConversationType = conv.Type
		rec.Metadata.MessageCount = conv.MessageCount
		rec.Metadata.ConversationTitle = conv.Title
		rec.Metadata.Participants = append([]string(nil), conv.Participants...)
	}

	m.records[participantID] = append([]core.MemoryRecord{rec}, m.records[participantID]...)
	snapshot, version := m.commitLocked()
	m.mu.Unlock()

	m.opts.Logger.Debug("Memory stored", "participant", participantID, "id", rec.ID, "preview", preview(rec.Content, 50))

	if err := m.persist(snapshot, version); err != nil {
		return &rec, err
	}
	return &rec, nil
}

// Search scores the participant's records (plus every other participant's
// records when cross-sharing is enabled) against the query, keeps those at or
// above the configured sensitivity and returns them best first. Equal scores
// keep newest-first order. limit <= 0 selects MaxRelevantMemories.
func (m *InMemoryStore) Search(participantID, query string, limit int) ([]core.RelevanceResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg := m.opts.Config
	if !cfg.Enabled || strings.TrimSpace(query) == "" {
		return []core.RelevanceResult{}, nil
	}

	candidates := m.records[participantID]
	if cfg.CrossSharingEnabled {
		merged := make([]core.MemoryRecord, 0, len(candidates))
		merged = append(merged, candidates...)
		for _, id := range m.participantsLocked() {
			if id != participantID {
				merged = append(merged, m.records[id]...)
			}
		}
		candidates = merged
	}
	if len(candidates) == 0 {
		return []core.RelevanceResult{}, nil
	}

	queryKeywords := ExtractKeywords(query)
	if len(queryKeywords) == 0 {
		return []core.RelevanceResult{}, nil
	}
	if limit <= 0 {
		limit = cfg.MaxRelevantMemories
	}

	results := make([]core.RelevanceResult, 0, len(candidates))
	for _, rec := range candidates {
		score := Score(queryKeywords, rec)
		if score >= cfg.SearchSensitivity {
			results = append(results, core.RelevanceResult{MemoryRecord: rec, RelevanceScore: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > limit {
		results = results[:limit]
	}

	m.opts.Logger.Debug("Memory search", "participant", participantID, "candidates", len(candidates), "results", len(results))

	return results, nil
}

// Delete removes a record by id. Unknown participants or ids are a no-op.
func (m *InMemoryStore) Delete(participantID, recordID string) error {
	m.mu.Lock()
	recs := m.records[participantID]
	idx := -1
	for i, r := range recs {
		if r.ID == recordID {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}
	kept := make([]core.MemoryRecord, 0, len(recs)-1)
	kept = append(kept, recs[:idx]...)
	kept = append(kept, recs[idx+1:]...)
	m.records[participantID] = kept
	snapshot, version := m.commitLocked()
	m.mu.Unlock()

	m.opts.Logger.Debug("Memory deleted", "participant", participantID, "id", recordID)

	return m.persist(snapshot, version)
}

// Clear empties one participant's records.
func (m *InMemoryStore) Clear(participantID string) error {
	m.mu.Lock()
	m.records[participantID] = []core.MemoryRecord{}
	snapshot, version := m.commitLocked()
	m.mu.Unlock()

	m.opts.Logger.Info("Memories cleared", "participant", participantID)

	return m.persist(snapshot, version)
}

// Reset drops every participant's records (process-wide memory reset).
func (m *InMemoryStore) Reset() error {
	m.mu.Lock()
	m.records = State{}
	snapshot, version := m.commitLocked()
	m.mu.Unlock()

	m.opts.Logger.Info("Memory reset")

	return m.persist(snapshot, version)
}

// LoadWithExpiry replaces the store contents with state, dropping records
// older than maxAgeDays (no filtering when maxAgeDays is 0). Kept records are
// not modified.
func (m *InMemoryStore) LoadWithExpiry(state State, maxAgeDays int) error {
	now := m.opts.Now()
	loaded := make(State, len(state))
	dropped := 0
	for id, recs := range state {
		kept := make([]core.MemoryRecord, 0, len(recs))
		for _, r := range recs {
			if maxAgeDays > 0 && ageInDays(now, r.CreatedAt) > float64(maxAgeDays) {
				dropped++
				continue
			}
			kept = append(kept, r)
		}
		loaded[id] = kept
	}

	m.mu.Lock()
	m.records = loaded
	snapshot, version := m.commitLocked()
	m.mu.Unlock()

	m.opts.Logger.Info("Memories loaded", "participants", len(loaded), "expired", dropped)

	return m.persist(snapshot, version)
}

func ageInDays(now, created time.Time) float64 {
	return now.Sub(created).Hours() / 24
}

// Records returns a copy of a participant's records, newest first.
func (m *InMemoryStore) Records(participantID string) []core.MemoryRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.MemoryRecord(nil), m.records[participantID]...)
}

// Participants returns the ids holding a record list, sorted.
func (m *InMemoryStore) Participants() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.participantsLocked()
}

// Len returns the total number of records across participants.
func (m *InMemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, recs := range m.records {
		n += len(recs)
	}
	return n
}

// Stats returns a copy of the per-participant statistics.
func (m *InMemoryStore) Stats() map[string]Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Stats, len(m.stats))
	for k, v := range m.stats {
		out[k] = v
	}
	return out
}

// State returns a deep-enough copy of the full state for persistence.
func (m *InMemoryStore) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *InMemoryStore) participantsLocked() []string {
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *InMemoryStore) snapshotLocked() State {
	out := make(State, len(m.records))
	for id, recs := range m.records {
		out[id] = append([]core.MemoryRecord{}, recs...)
	}
	return out
}

// commitLocked recomputes statistics and returns a snapshot for persistence
// together with its version.
func (m *InMemoryStore) commitLocked() (State, uint64) {
	stats := make(map[string]Stats, len(m.records))
	for id, recs := range m.records {
		size := 0
		if data, err := json.Marshal(recs); err == nil {
			size = len(data)
		}
		stats[id] = Stats{Total: len(recs), StorageKB: int(math.Round(float64(size) / 1024))}
	}
	for id := range m.stats {
		if _, ok := stats[id]; !ok {
			recordsGauge.DeleteLabelValues(id)
		}
	}
	for id, s := range stats {
		recordsGauge.WithLabelValues(id).Set(float64(s.Total))
	}
	m.stats = stats
	m.version++
	return m.snapshotLocked(), m.version
}

// persist hands snapshot to the hook unless a newer version already went out.
func (m *InMemoryStore) persist(snapshot State, version uint64) error {
	if m.opts.Persist == nil {
		return nil
	}
	m.persistMu.Lock()
	defer m.persistMu.Unlock()
	if version <= m.persisted {
		return nil
	}
	if err := m.opts.Persist(snapshot); err != nil {
		return fmt.Errorf("persist memories: %w", err)
	}
	m.persisted = version
	return nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
