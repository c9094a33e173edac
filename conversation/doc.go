// Package conversation manages the set of conversations: creation with the
// participant invariants, newest-first listing, rename, delete, persistence
// through a hook, single-conversation export/import and plain-text rendering.
//
// The Store hands out live *core.Conversation values; the orchestrator appends
// messages to them and the owner calls Save afterwards.
package conversation
