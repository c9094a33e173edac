// Package multiai is the application façade of the multi-participant AI
// conversation system. An App owns the conversation list, the per-participant
// memory store, provider credentials and the memory configuration, and keeps
// them in a core.KVStore as four independent JSON documents.
//
// Most applications:
//  1. create an App via New (optionally passing a durable KVStore)
//  2. set provider credentials or rely on the environment
//  3. create conversations and drive them with SendMessage or StartDialogue
package multiai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aibymlorg/managing-multiagent-intelligence/conversation"
	"github.com/aibymlorg/managing-multiagent-intelligence/core"
	"github.com/aibymlorg/managing-multiagent-intelligence/logging"
	"github.com/aibymlorg/managing-multiagent-intelligence/memory"
	"github.com/aibymlorg/managing-multiagent-intelligence/orchestrator"
	"github.com/aibymlorg/managing-multiagent-intelligence/participant"
	"github.com/aibymlorg/managing-multiagent-intelligence/storage"
)

// Options configures an App.
type Options struct {
	// Store persists the four documents (defaults to storage.InMemoryStore).
	Store core.KVStore
	// Registry resolves participants (defaults to participant.New()).
	Registry *participant.Registry
	// Credentials seed the registry without being persisted. Stored
	// credentials take precedence.
	Credentials map[string]string
	// Orchestrator options are applied after the App's own defaults.
	Orchestrator []func(o *orchestrator.Options)
	// MaxAutoRounds is recorded on new conversations.
	MaxAutoRounds int
	// AutoProgressRounds > 0 runs that many follow-up reactive rounds after
	// each user message in multi-participant conversations, capped by the
	// conversation's MaxAutoRounds.
	AutoProgressRounds int
	Now                func() time.Time
	Rand               *rand.Rand
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// App is the explicit application context.
type App struct {
	opts          Options
	kv            core.KVStore
	registry      *participant.Registry
	memory        *memory.InMemoryStore
	conversations *conversation.Store
	orch          *orchestrator.Orchestrator

	mu   sync.Mutex
	keys map[string]string // user-provided credentials, persisted
}

// New creates an App and loads any previously persisted state from the store.
// Unreadable documents are logged and replaced by defaults.
func New(ctx context.Context, optFns ...func(o *Options)) (*App, error) {
	opts := Options{
		MaxAutoRounds: conversation.DefaultMaxAutoRounds,
		Now:           time.Now,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Store == nil {
		opts.Store = storage.NewInMemoryStore()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(opts.Now().UnixNano()), 0))
	}
	if opts.Registry == nil {
		r, err := participant.New(func(o *participant.Options) { o.Logger = opts.Logger })
		if err != nil {
			return nil, err
		}
		opts.Registry = r
	}

	a := &App{
		opts:     opts,
		kv:       opts.Store,
		registry: opts.Registry,
		keys:     map[string]string{},
	}

	memCfg := core.DefaultMemoryConfig()
	if err := a.loadDocument(ctx, core.KeyMemoryConfig, &memCfg); err != nil {
		return nil, err
	}
	if err := memCfg.Validate(); err != nil {
		opts.Logger.Warn("Stored memory config is invalid, using defaults", "error", err)
		memCfg = core.DefaultMemoryConfig()
	}

	a.memory = memory.NewInMemoryStore(func(o *memory.Options) {
		o.Config = memCfg
		o.Now = opts.Now
		o.Logger = opts.Logger
		o.Persist = func(s memory.State) error { return a.put(context.Background(), core.KeyMemories, s) }
	})
	a.conversations = conversation.NewStore(func(o *conversation.Options) {
		o.Now = opts.Now
		o.MaxAutoRounds = opts.MaxAutoRounds
		o.Logger = opts.Logger
		o.Persist = func(c []*core.Conversation) error { return a.put(context.Background(), core.KeyConversations, c) }
	})

	orchOpts := append([]func(o *orchestrator.Options){func(o *orchestrator.Options) {
		o.Now = opts.Now
		o.Logger = opts.Logger
	}}, opts.Orchestrator...)
	a.orch = orchestrator.New(a.registry, a.memory, orchOpts...)

	if err := a.loadDocument(ctx, core.KeyAPIKeys, &a.keys); err != nil {
		return nil, err
	}
	if a.keys == nil {
		a.keys = map[string]string{}
	}
	for id, v := range opts.Credentials {
		a.registry.SetCredential(id, v)
	}
	for id, v := range a.keys {
		a.registry.SetCredential(id, v)
	}

	var convs []*core.Conversation
	if err := a.loadDocument(ctx, core.KeyConversations, &convs); err != nil {
		return nil, err
	}
	n := a.conversations.Load(convs)

	var mem memory.State
	if err := a.loadDocument(ctx, core.KeyMemories, &mem); err != nil {
		return nil, err
	}
	if mem != nil {
		if err := a.memory.LoadWithExpiry(mem, memCfg.MaxMemoryAgeDays); err != nil {
			return nil, err
		}
	}

	opts.Logger.Info("Application state loaded", "conversations", n, "memory_participants", len(mem))

	return a, nil
}

// loadDocument decodes key into v. Missing keys leave v untouched; malformed
// documents are logged and ignored. Only storage failures are returned.
func (a *App) loadDocument(ctx context.Context, key string, v any) error {
	data, err := a.kv.Get(ctx, key)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		a.opts.Logger.Warn("Ignoring malformed stored document", "key", key, "error", err)
	}
	return nil
}

func (a *App) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := a.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Registry returns the participant registry.
func (a *App) Registry() *participant.Registry { return a.registry }

// Memory returns the memory store.
func (a *App) Memory() *memory.InMemoryStore { return a.memory }

// Orchestrator returns the turn orchestrator.
func (a *App) Orchestrator() *orchestrator.Orchestrator { return a.orch }

// CreateConversation creates and persists an empty conversation.
func (a *App) CreateConversation(typ core.ConversationType, participants []string) (*core.Conversation, error) {
	for _, pid := range participants {
		if !a.registry.Has(pid) {
			return nil, &core.UnsupportedProviderError{ProviderID: pid}
		}
	}
	return a.conversations.Create(typ, participants)
}

// Conversations returns all conversations, newest first.
func (a *App) Conversations() []*core.Conversation { return a.conversations.List() }

// Conversation returns a conversation by id.
func (a *App) Conversation(id string) (*core.Conversation, error) { return a.conversations.Get(id) }

// RenameConversation sets a conversation's title.
func (a *App) RenameConversation(id, title string) error { return a.conversations.Rename(id, title) }

// DeleteConversation removes a conversation.
func (a *App) DeleteConversation(id string) error { return a.conversations.Delete(id) }

// SendMessage runs a reactive round in the conversation, followed by
// auto-progress rounds when enabled. The conversation is persisted whether or
// not the round succeeded, since the user message is always committed.
func (a *App) SendMessage(ctx context.Context, conversationID, text string) ([]*orchestrator.RoundResult, error) {
	conv, err := a.conversations.Get(conversationID)
	if err != nil {
		return nil, err
	}

	res, err := a.orch.HandleUserMessage(ctx, conv, text)
	results := []*orchestrator.RoundResult{res}
	if res == nil {
		results = nil
	}
	if err == nil {
		var more []*orchestrator.RoundResult
		more, err = a.autoProgress(ctx, conv)
		results = append(results, more...)
	}

	if saveErr := a.conversations.Save(); saveErr != nil {
		return results, errors.Join(err, saveErr)
	}
	return results, err
}

func (a *App) autoProgress(ctx context.Context, conv *core.Conversation) ([]*orchestrator.RoundResult, error) {
	rounds := min(a.opts.AutoProgressRounds, conv.Metadata.MaxAutoRounds)
	if rounds <= 0 || conv.Type == core.ConversationSingle {
		return nil, nil
	}

	var results []*orchestrator.RoundResult
	rc := core.NewRoundCounter(rounds)
	for {
		round, ok := rc.Next()
		if !ok {
			return results, nil
		}
		a.mu.Lock()
		prompt := orchestrator.FollowUpPrompt(a.opts.Rand)
		a.mu.Unlock()

		a.opts.Logger.Debug("Auto-progress round", "conversation_id", conv.ID, "round", round)
		res, err := a.orch.HandleUserMessage(ctx, conv, prompt)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, err
		}
	}
}

// StartDialogue runs an autonomous dialogue in a multi-participant
// conversation and persists the transcript.
func (a *App) StartDialogue(ctx context.Context, conversationID, topic string, maxRounds int) ([]core.Message, error) {
	conv, err := a.conversations.Get(conversationID)
	if err != nil {
		return nil, err
	}
	d, err := a.orch.NewDialogue(conv, topic, maxRounds)
	if err != nil {
		return nil, err
	}
	msgs, err := d.Run(ctx)
	if len(msgs) > 0 {
		if saveErr := a.conversations.Save(); saveErr != nil {
			return msgs, errors.Join(err, saveErr)
		}
	}
	return msgs, err
}

// ExportConversation renders a conversation as an export document and
// returns it together with the suggested file name.
func (a *App) ExportConversation(id string) ([]byte, string, error) {
	conv, err := a.conversations.Get(id)
	if err != nil {
		return nil, "", err
	}
	data, err := conversation.Export(conv, a.opts.Now())
	if err != nil {
		return nil, "", err
	}
	return data, conversation.FileName(conv), nil
}

// ImportConversation adds an exported conversation under a fresh id.
func (a *App) ImportConversation(data []byte) (*core.Conversation, error) {
	return a.conversations.Import(data)
}

// ExportMemories renders every participant's memories as an export document.
func (a *App) ExportMemories() ([]byte, error) { return a.memory.ExportJSON() }

// ImportMemories merges an exported memory document and returns the number of
// participants imported.
func (a *App) ImportMemories(data []byte) (int, error) { return a.memory.ImportJSON(data) }

// ResetMemories drops every participant's memories.
func (a *App) ResetMemories() error { return a.memory.Reset() }

// MemoryStats returns per-participant memory statistics.
func (a *App) MemoryStats() map[string]memory.Stats { return a.memory.Stats() }

// MemoryConfig returns the memory configuration in effect.
func (a *App) MemoryConfig() core.MemoryConfig { return a.memory.Config() }

// SetMemoryConfig validates, applies and persists a memory configuration.
func (a *App) SetMemoryConfig(ctx context.Context, cfg core.MemoryConfig) error {
	if err := a.memory.SetConfig(cfg); err != nil {
		return err
	}
	return a.put(ctx, core.KeyMemoryConfig, cfg)
}

// SetCredential stores and persists a participant credential. An empty value
// removes it.
func (a *App) SetCredential(ctx context.Context, participantID, value string) error {
	if !a.registry.Has(participantID) {
		return &core.UnsupportedProviderError{ProviderID: participantID}
	}
	a.registry.SetCredential(participantID, value)

	a.mu.Lock()
	if v := a.registry.Credentials()[participantID]; v != "" && value != "" {
		a.keys[participantID] = v
	} else {
		delete(a.keys, participantID)
	}
	keys := make(map[string]string, len(a.keys))
	for k, v := range a.keys {
		keys[k] = v
	}
	a.mu.Unlock()

	a.opts.Logger.Info("Credential updated", "participant", participantID, "set", value != "")

	return a.put(ctx, core.KeyAPIKeys, keys)
}
