package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
	"github.com/aibymlorg/managing-multiagent-intelligence/model"
)

// Orchestrator runs reactive rounds and dialogues against a Dispatcher.
// A conversation must not be driven by two rounds at the same time.
type Orchestrator struct {
	dispatch Dispatcher
	memory   core.MemoryStore
	opts     Options
}

// New creates an Orchestrator. memory may be nil to disable memory handling.
func New(dispatch Dispatcher, memory core.MemoryStore, optFns ...func(o *Options)) *Orchestrator {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = DefaultHistoryWindow
	}
	return &Orchestrator{dispatch: dispatch, memory: memory, opts: opts}
}

// Options returns the effective options.
func (o *Orchestrator) Options() Options { return o.opts }

// resolve dispatches every participant before any provider is called, so
// missing credentials and unknown ids surface without network interaction.
func (o *Orchestrator) resolve(participants []string) ([]model.Model, error) {
	adapters := make([]model.Model, len(participants))
	for i, pid := range participants {
		m, err := o.dispatch.Dispatch(pid)
		if err != nil {
			return nil, err
		}
		adapters[i] = m
	}
	return adapters, nil
}

type callLogger interface {
	LogProviderCall(participant string, dur time.Duration, success bool, err error)
}

type roundLogger interface {
	LogRound(mode string, calls int, dur time.Duration, success bool, err error)
}

// call performs one provider call. The call itself is detached from ctx
// cancellation; callers check ctx between calls.
func (o *Orchestrator) call(ctx context.Context, pid string, m model.Model, history []core.Turn, prompt string) (string, error) {
	start := time.Now()
	out, err := m.Complete(context.WithoutCancel(ctx), history, prompt)
	dur := time.Since(start)

	providerCallDuration.WithLabelValues(pid).Observe(dur.Seconds())
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}
	providerCalls.WithLabelValues(pid, outcome).Inc()

	if l, ok := o.opts.Logger.(callLogger); ok {
		l.LogProviderCall(pid, dur, err == nil, err)
	} else if err != nil {
		o.opts.Logger.Error("Provider call failed", "participant", pid, "duration", dur, "error", err)
	} else {
		o.opts.Logger.Debug("Provider call completed", "participant", pid, "duration", dur)
	}

	if err != nil {
		return "", fmt.Errorf("failed to get response from %s: %w", pid, err)
	}
	return out, nil
}

func (o *Orchestrator) logRound(mode string, calls int, start time.Time, err error) {
	outcome := outcomeSuccess
	switch {
	case err == nil:
	case isCancellation(err):
		outcome = outcomeCanceled
	default:
		outcome = outcomeError
	}
	rounds.WithLabelValues(mode, outcome).Inc()

	dur := time.Since(start)
	if l, ok := o.opts.Logger.(roundLogger); ok {
		l.LogRound(mode, calls, dur, err == nil, err)
		return
	}
	if err != nil {
		o.opts.Logger.Warn("Round ended with error", "mode", mode, "calls", calls, "duration", dur, "error", err)
		return
	}
	o.opts.Logger.Info("Round completed", "mode", mode, "calls", calls, "duration", dur)
}

// composePrompt prefixes the user text with the relevant memory contents.
func composePrompt(text string, memories []core.RelevanceResult) string {
	if len(memories) == 0 {
		return text
	}
	contents := make([]string, len(memories))
	for i, m := range memories {
		contents[i] = m.Content
	}
	return "[RELEVANT CONTEXT FROM PREVIOUS CONVERSATIONS]: " + strings.Join(contents, " | ") +
		"\n\n[USER MESSAGE]: " + text
}

func (o *Orchestrator) now() time.Time { return o.opts.Now().UTC() }
