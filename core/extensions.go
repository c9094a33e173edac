package core

import "fmt"

// MaxExtensions bounds the number of forward-compatible entries carried by an
// Extensions map.
const MaxExtensions = 16

// Extensions is a bounded string mapping attached to messages, conversations
// and memory records for fields outside the typed schema.
type Extensions map[string]string

// Set stores key=value, allocating the map on first use. Adding a new key to a
// full map fails with a ValidationError; overwriting an existing key always succeeds.
func (e *Extensions) Set(key, value string) error {
	if *e == nil {
		*e = Extensions{}
	}
	if _, exists := (*e)[key]; !exists && len(*e) >= MaxExtensions {
		return &ValidationError{Field: "extensions", Reason: fmt.Sprintf("limit of %d entries reached", MaxExtensions)}
	}
	(*e)[key] = value
	return nil
}

// Clone returns an independent copy (nil stays nil).
func (e Extensions) Clone() Extensions {
	if e == nil {
		return nil
	}
	out := make(Extensions, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
