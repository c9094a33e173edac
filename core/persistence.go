package core

import "context"

// Keys of the independently serialized documents kept in a KVStore.
const (
	KeyConversations = "multi-ai-conversations"
	KeyAPIKeys       = "multi-ai-api-keys"
	KeyMemoryConfig  = "multi-ai-memory-config"
	KeyMemories      = "multi-ai-memories"
)

// KVStore is the generic persistence collaborator. Values are opaque JSON
// documents. Get returns ErrNotFound for unknown keys.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
