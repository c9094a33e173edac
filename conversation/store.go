package conversation

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
	"github.com/aibymlorg/managing-multiagent-intelligence/logging"
)

// DefaultMaxAutoRounds is recorded in new conversations' metadata.
const DefaultMaxAutoRounds = 5

// Options configure a Store.
type Options struct {
	Now           func() time.Time
	NewID         func() string
	MaxAutoRounds int
	// Persist is invoked with the full newest-first list after each mutation.
	Persist func([]*core.Conversation) error
	Logger  logging.Logger
}

// Store is a concurrency-safe, newest-first list of conversations.
type Store struct {
	mu    sync.RWMutex
	convs []*core.Conversation
	opts  Options
}

// NewStore constructs an empty store.
func NewStore(optFns ...func(o *Options)) *Store {
	opts := Options{
		Now:           time.Now,
		NewID:         newConversationID,
		MaxAutoRounds: DefaultMaxAutoRounds,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{opts: opts}
}

func newConversationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Create validates the participants and prepends a new empty conversation.
func (s *Store) Create(typ core.ConversationType, participants []string) (*core.Conversation, error) {
	conv, err := core.NewConversation(s.opts.NewID(), typ, participants)
	if err != nil {
		return nil, err
	}
	conv.CreatedAt = s.opts.Now().UTC()
	conv.Metadata.MaxAutoRounds = s.opts.MaxAutoRounds

	s.mu.Lock()
	s.convs = append([]*core.Conversation{conv}, s.convs...)
	s.mu.Unlock()

	s.opts.Logger.Info("Conversation created", "conversation_id", conv.ID, "type", string(typ), "participants", len(participants))
	return conv, s.Save()
}

// Add validates and prepends an existing conversation. The id must be unused.
func (s *Store) Add(conv *core.Conversation) error {
	if err := conv.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.indexLocked(conv.ID) >= 0 {
		s.mu.Unlock()
		return &core.ValidationError{Field: "id", Reason: fmt.Sprintf("conversation %s already exists", conv.ID)}
	}
	s.convs = append([]*core.Conversation{conv}, s.convs...)
	s.mu.Unlock()
	return s.Save()
}

// Get returns the live conversation with id.
func (s *Store) Get(id string) (*core.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.convs[i], nil
	}
	return nil, fmt.Errorf("conversation %s: %w", id, core.ErrNotFound)
}

// List returns the conversations newest first.
func (s *Store) List() []*core.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*core.Conversation(nil), s.convs...)
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convs)
}

// Rename sets a conversation title.
func (s *Store) Rename(id, title string) error {
	conv, err := s.Get(id)
	if err != nil {
		return err
	}
	conv.SetTitle(title)
	return s.Save()
}

// Delete removes a conversation.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("conversation %s: %w", id, core.ErrNotFound)
	}
	s.convs = append(s.convs[:i:i], s.convs[i+1:]...)
	s.mu.Unlock()
	s.opts.Logger.Info("Conversation deleted", "conversation_id", id)
	return s.Save()
}

// Load replaces the store content without invoking the persist hook.
// Conversations violating the participant invariants are skipped.
func (s *Store) Load(convs []*core.Conversation) int {
	kept := make([]*core.Conversation, 0, len(convs))
	for _, c := range convs {
		if c == nil {
			continue
		}
		if err := c.Validate(); err != nil {
			s.opts.Logger.Warn("Skipping invalid stored conversation", "conversation_id", c.ID, "error", err)
			continue
		}
		kept = append(kept, c)
	}
	s.mu.Lock()
	s.convs = kept
	s.mu.Unlock()
	return len(kept)
}

// Save invokes the persist hook with the current list.
func (s *Store) Save() error {
	if s.opts.Persist == nil {
		return nil
	}
	if err := s.opts.Persist(s.List()); err != nil {
		return fmt.Errorf("persist conversations: %w", err)
	}
	return nil
}

func (s *Store) indexLocked(id string) int {
	for i, c := range s.convs {
		if c.ID == id {
			return i
		}
	}
	return -1
}
