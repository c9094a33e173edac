// Package storage provides implementations of core.KVStore, the key-value
// persistence collaborator that holds the serialized conversation, credential,
// memory configuration and memory documents.
//
// InMemoryStore keeps documents in process memory; the sqlite sub-package
// persists them in a single SQLite table.
package storage
