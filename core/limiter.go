package core

import "sync"

// RoundCounter tracks rounds against a configured maximum.
type RoundCounter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewRoundCounter creates a counter allowing max rounds.
func NewRoundCounter(max int) *RoundCounter {
	return &RoundCounter{max: max}
}

// Next advances the counter and reports whether another round is allowed.
// The returned round number is 1-based.
func (rc *RoundCounter) Next() (int, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.count >= rc.max {
		return rc.count, false
	}
	rc.count++

	return rc.count, true
}

// Count returns the number of rounds started.
func (rc *RoundCounter) Count() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return rc.count
}

// Remaining returns how many rounds are left.
func (rc *RoundCounter) Remaining() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return rc.max - rc.count
}

// Reset sets the counter back to zero.
func (rc *RoundCounter) Reset() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.count = 0
}
