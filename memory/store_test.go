package memory

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

// fakeClock hands out strictly increasing timestamps.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestStore(t *testing.T, mutate func(cfg *core.MemoryConfig)) *InMemoryStore {
	t.Helper()
	clock := newFakeClock()
	seq := 0
	return NewInMemoryStore(func(o *Options) {
		o.Config.Enabled = true
		if mutate != nil {
			mutate(&o.Config)
		}
		o.Now = clock.Now
		o.NewID = func() string {
			seq++
			return fmt.Sprintf("mem_%d", seq)
		}
	})
}

func TestInMemoryStore_StoreDisabledOrBlank(t *testing.T) {
	disabled := NewInMemoryStore()
	rec, err := disabled.Store("openai", "remember the golang meetup", core.StoreMetadata{})
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Zero(t, disabled.Len())

	s := newTestStore(t, nil)
	rec, err = s.Store("openai", "   \n ", core.StoreMetadata{})
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Zero(t, s.Len())
}

func TestInMemoryStore_StoreCapturesContext(t *testing.T) {
	s := newTestStore(t, nil)
	snap := &core.ConversationSnapshot{
		ID:           "conv-1",
		Title:        "Planning",
		Type:         core.ConversationBilateral,
		Participants: []string{"openai", "anthropic"},
		MessageCount: 3,
	}

	rec, err := s.Store("openai", "  Kubernetes rollout plan for Friday  ", core.StoreMetadata{Sender: "user", Conversation: snap})
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "mem_1", rec.ID)
	assert.Equal(t, "Kubernetes rollout plan for Friday", rec.Content)
	assert.Equal(t, []string{"kubernetes", "rollout", "plan", "friday"}, rec.Keywords)
	assert.Equal(t, core.DefaultCategory, rec.Category)
	assert.Equal(t, "conv-1", rec.ConversationID)
	assert.Equal(t, core.ConversationBilateral, rec.ConversationType)
	assert.Equal(t, 3, rec.Metadata.MessageCount)
	assert.Equal(t, "Planning", rec.Metadata.ConversationTitle)
	assert.Equal(t, []string{"openai", "anthropic"}, rec.Metadata.Participants)

	// snapshot is copied, not aliased
	snap.Participants[0] = "changed"
	assert.Equal(t, "openai", s.Records("openai")[0].Metadata.Participants[0])
}

func TestInMemoryStore_StoreWithoutConversation(t *testing.T) {
	s := newTestStore(t, nil)
	rec, err := s.Store("gemini", "solar panel efficiency", core.StoreMetadata{Category: core.CategoryAIResponse})
	require.NoError(t, err)
	assert.Equal(t, core.ConversationSingle, rec.ConversationType)
	assert.Equal(t, "Unknown", rec.Metadata.ConversationTitle)
	assert.Equal(t, []string{"gemini"}, rec.Metadata.Participants)
	assert.Equal(t, core.CategoryAIResponse, rec.Category)
}

func TestInMemoryStore_NewestFirst(t *testing.T) {
	s := newTestStore(t, nil)
	for i := 0; i < 3; i++ {
		_, err := s.Store("openai", fmt.Sprintf("note number %d", i), core.StoreMetadata{})
		require.NoError(t, err)
	}
	recs := s.Records("openai")
	require.Len(t, recs, 3)
	assert.Equal(t, "note number 2", recs[0].Content)
	assert.Equal(t, "note number 0", recs[2].Content)
}

func TestInMemoryStore_SearchRoundTrip(t *testing.T) {
	s := newTestStore(t, nil)
	rec, err := s.Store("openai", "Golang concurrency patterns with channels", core.StoreMetadata{})
	require.NoError(t, err)

	self := Score(ExtractKeywords(rec.Content), *rec)
	require.GreaterOrEqual(t, self, s.Config().SearchSensitivity)

	res, err := s.Search("openai", rec.Content, 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, rec.ID, res[0].ID)
	assert.InDelta(t, self, res[0].RelevanceScore, 1e-9)
}

func TestInMemoryStore_SearchEmptyCases(t *testing.T) {
	s := newTestStore(t, nil)
	_, err := s.Store("openai", "database migrations", core.StoreMetadata{})
	require.NoError(t, err)

	res, _ := s.Search("openai", "", 5)
	assert.Empty(t, res)
	res, _ = s.Search("openai", "the and of", 5)
	assert.Empty(t, res, "a query without keywords matches nothing")
	res, _ = s.Search("anthropic", "database", 5)
	assert.Empty(t, res, "no records for participant")

	require.NoError(t, s.SetConfig(func() core.MemoryConfig { c := s.Config(); c.Enabled = false; return c }()))
	res, _ = s.Search("openai", "database", 5)
	assert.Empty(t, res)
}

func TestInMemoryStore_SearchOrderingAndLimit(t *testing.T) {
	s := newTestStore(t, func(cfg *core.MemoryConfig) { cfg.MaxRelevantMemories = 2 })

	older, _ := s.Store("openai", "postgres indexing tips", core.StoreMetadata{})
	_, _ = s.Store("openai", "unrelated gardening advice", core.StoreMetadata{})
	newer, _ := s.Store("openai", "postgres indexing tips", core.StoreMetadata{})
	best, _ := s.Store("openai", "postgres indexing tips for vacuum tuning", core.StoreMetadata{})

	res, err := s.Search("openai", "postgres vacuum", 10)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, best.ID, res[0].ID)
	// equal scores keep newest-first order
	assert.Equal(t, newer.ID, res[1].ID)
	assert.Equal(t, older.ID, res[2].ID)

	limited, _ := s.Search("openai", "postgres vacuum", 0)
	assert.Len(t, limited, 2)
}

func TestInMemoryStore_SearchSensitivity(t *testing.T) {
	s := newTestStore(t, func(cfg *core.MemoryConfig) { cfg.SearchSensitivity = 0.9 })
	_, _ = s.Store("openai", "weather forecast tomorrow", core.StoreMetadata{})

	res, _ := s.Search("openai", "weather stocks bonds", 5)
	assert.Empty(t, res)

	res, _ = s.Search("openai", "weather forecast", 5)
	assert.Len(t, res, 1)
}

func TestInMemoryStore_CrossSharing(t *testing.T) {
	s := newTestStore(t, nil)
	_, _ = s.Store("anthropic", "quantum computing basics", core.StoreMetadata{})

	res, _ := s.Search("openai", "quantum computing", 5)
	assert.Empty(t, res)

	cfg := s.Config()
	cfg.CrossSharingEnabled = true
	require.NoError(t, s.SetConfig(cfg))

	res, _ = s.Search("openai", "quantum computing", 5)
	require.Len(t, res, 1)
	assert.Equal(t, "anthropic", res[0].ParticipantID)
}

func TestInMemoryStore_DeleteAndClear(t *testing.T) {
	s := newTestStore(t, nil)
	a, _ := s.Store("openai", "first memory entry", core.StoreMetadata{})
	_, _ = s.Store("openai", "second memory entry", core.StoreMetadata{})

	require.NoError(t, s.Delete("openai", "does_not_exist"))
	require.NoError(t, s.Delete("nobody", a.ID))
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Delete("openai", a.ID))
	assert.Equal(t, 1, s.Len())
	assert.NotEqual(t, a.ID, s.Records("openai")[0].ID)

	require.NoError(t, s.Clear("openai"))
	assert.Zero(t, s.Len())
	assert.Equal(t, 0, s.Stats()["openai"].Total)
}

func TestInMemoryStore_LoadWithExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s := NewInMemoryStore(func(o *Options) {
		o.Config.Enabled = true
		o.Now = func() time.Time { return now }
	})
	old := core.MemoryRecord{ID: "old", Content: "old news", CreatedAt: now.Add(-31 * 24 * time.Hour)}
	fresh := core.MemoryRecord{ID: "fresh", Content: "fresh news", CreatedAt: now.Add(-2 * 24 * time.Hour)}
	state := State{"openai": {fresh, old}}

	require.NoError(t, s.LoadWithExpiry(state, 30))
	recs := s.Records("openai")
	require.Len(t, recs, 1)
	assert.Equal(t, fresh, recs[0])

	require.NoError(t, s.LoadWithExpiry(state, 0))
	assert.Len(t, s.Records("openai"), 2)
	// input state is not mutated
	assert.Len(t, state["openai"], 2)
}

func TestInMemoryStore_PersistHookAndStats(t *testing.T) {
	var calls int
	var last State
	s := NewInMemoryStore(func(o *Options) {
		o.Config.Enabled = true
		o.Persist = func(st State) error {
			calls++
			last = st
			return nil
		}
	})

	_, err := s.Store("openai", "persist me please", core.StoreMetadata{})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, last["openai"], 1)

	stats := s.Stats()["openai"]
	assert.Equal(t, 1, stats.Total)
	assert.GreaterOrEqual(t, stats.StorageKB, 0)

	require.NoError(t, s.Delete("openai", "missing"))
	assert.Equal(t, 1, calls, "no-op delete does not persist")
}

func TestInMemoryStore_PersistError(t *testing.T) {
	boom := errors.New("disk full")
	s := NewInMemoryStore(func(o *Options) {
		o.Config.Enabled = true
		o.Persist = func(State) error { return boom }
	})
	rec, err := s.Store("openai", "still stored in memory", core.StoreMetadata{})
	assert.ErrorIs(t, err, boom)
	assert.NotNil(t, rec)
	assert.Equal(t, 1, s.Len())
}

func TestInMemoryStore_SetConfigValidates(t *testing.T) {
	s := NewInMemoryStore()
	cfg := s.Config()
	cfg.SearchSensitivity = 2
	var vErr *core.ValidationError
	assert.True(t, errors.As(s.SetConfig(cfg), &vErr))
}

func TestInMemoryStore_ConcurrentAccess(t *testing.T) {
	s := newTestStore(t, nil)
	var mu sync.Mutex
	s.opts.NewID = func() string {
		mu.Lock()
		defer mu.Unlock()
		return newRecordID()
	}
	wg := sync.WaitGroup{}
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pid := []string{"openai", "anthropic"}[i%2]
			if _, err := s.Store(pid, fmt.Sprintf("concurrent memory %d", i), core.StoreMetadata{}); err != nil {
				t.Errorf("store error: %v", err)
			}
			if _, err := s.Search(pid, "concurrent memory", 5); err != nil {
				t.Errorf("search error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 25, s.Len())
}

func TestInMemoryStore_PersistKeepsMutationOrder(t *testing.T) {
	var (
		mu      sync.Mutex
		calls   int
		last    State
		entered = make(chan struct{})
	)
	m := NewInMemoryStore(func(o *Options) {
		o.Config.Enabled = true
		o.Persist = func(st State) error {
			mu.Lock()
			calls++
			first := calls == 1
			mu.Unlock()
			if first {
				close(entered)
				time.Sleep(50 * time.Millisecond)
			}
			mu.Lock()
			last = st
			mu.Unlock()
			return nil
		}
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := m.Store("ai", "first note about databases", core.StoreMetadata{})
		assert.NoError(t, err)
	}()
	<-entered
	go func() {
		defer wg.Done()
		_, err := m.Store("ai", "second note about caches", core.StoreMetadata{})
		assert.NoError(t, err)
	}()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, m.Records("ai"), 2)
	assert.Len(t, last["ai"], 2)
	assert.Equal(t, m.State(), last)
}

type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.record(msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.record(msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.record(msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.record(msg) }

func TestInMemoryStore_LogMessagesUseSentenceCase(t *testing.T) {
	logger := &recordingLogger{}
	m := NewInMemoryStore(func(o *Options) {
		o.Config.Enabled = true
		o.Logger = logger
	})

	rec, err := m.Store("ai", "note about queues", core.StoreMetadata{})
	require.NoError(t, err)
	_, err = m.Search("ai", "queues", 0)
	require.NoError(t, err)
	require.NoError(t, m.Delete("ai", rec.ID))
	require.NoError(t, m.Clear("ai"))
	require.NoError(t, m.Reset())

	assert.Equal(t, []string{"Memory stored", "Memory search", "Memory deleted", "Memories cleared", "Memory reset"}, logger.msgs)
}
