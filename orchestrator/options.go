package orchestrator

import (
	"fmt"
	"time"

	"github.com/aibymlorg/managing-multiagent-intelligence/logging"
	"github.com/aibymlorg/managing-multiagent-intelligence/model"
)

// FanOut selects how a reactive round issues its provider calls.
type FanOut string

const (
	// FanOutSequential calls participants one after another in participant order.
	FanOutSequential FanOut = "sequential"
	// FanOutParallel calls participants concurrently and reorders results before commit.
	FanOutParallel FanOut = "parallel"
)

// FailurePolicy decides what a reactive round commits when a call fails.
type FailurePolicy string

const (
	// FailAbort stops at the first failure, discards the round's responses and
	// appends one error message.
	FailAbort FailurePolicy = "abort"
	// FailContinue calls every participant and appends an error message at
	// the position of each failed one.
	FailContinue FailurePolicy = "continue"
)

// Defaults.
const (
	DefaultHistoryWindow = 10
	DefaultCallDelay     = 500 * time.Millisecond
	DefaultRoundDelay    = time.Second
	// MinAutoStoreLength is the length a response must exceed to be remembered.
	MinAutoStoreLength = 50
)

// Dispatcher resolves participant ids to adapters.
type Dispatcher interface {
	Dispatch(participantID string) (model.Model, error)
	DisplayName(participantID string) string
}

// Options configure an Orchestrator.
type Options struct {
	FanOut    FanOut
	OnFailure FailurePolicy
	// HistoryWindow is the number of trailing messages handed to adapters.
	HistoryWindow int
	// CallDelay is the minimum spacing between the starts of sequential calls
	// in multi-participant reactive rounds. A call that takes longer than
	// CallDelay is followed by the next one without any pause.
	CallDelay time.Duration
	// RoundDelay is the minimum spacing between the starts of dialogue rounds,
	// with the same semantics as CallDelay.
	RoundDelay time.Duration
	// MaxParallel bounds concurrent calls in parallel fan-out; 0 means unbounded.
	MaxParallel int
	Now         func() time.Time
	Logger      logging.Logger
}

func defaultOptions() Options {
	return Options{
		FanOut:        FanOutSequential,
		OnFailure:     FailAbort,
		HistoryWindow: DefaultHistoryWindow,
		CallDelay:     DefaultCallDelay,
		RoundDelay:    DefaultRoundDelay,
		Now:           time.Now,
		Logger:        logging.NoOpLogger{},
	}
}

// ParseFanOut converts a configuration string.
func ParseFanOut(s string) (FanOut, error) {
	switch FanOut(s) {
	case FanOutSequential, FanOutParallel:
		return FanOut(s), nil
	case "":
		return FanOutSequential, nil
	default:
		return "", fmt.Errorf("unknown fan-out %q", s)
	}
}

// ParseFailurePolicy converts a configuration string.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case FailAbort, FailContinue:
		return FailurePolicy(s), nil
	case "":
		return FailAbort, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q", s)
	}
}
