package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

// RoundResult describes what a reactive round committed.
type RoundResult struct {
	UserMessage core.Message
	// Responses are the messages appended after the user message, in order.
	Responses []core.Message
	// RelevantMemories holds the memories found per participant.
	RelevantMemories map[string][]core.RelevanceResult
}

// HandleUserMessage runs one reactive round:
//
//  1. append the user message
//  2. search memories for every participant
//  3. auto-store the user message for every participant
//  4. call every participant with the trailing history and its prompt
//  5. commit responses in participant order and auto-store long responses
//
// Under FailAbort a failed call discards the round's responses and appends a
// single error message; the error is returned. Under FailContinue failed
// calls become error messages at their position and the joined errors are
// returned alongside the result. When ctx is cancelled between calls nothing
// beyond the user message is committed and ctx.Err() is returned.
func (o *Orchestrator) HandleUserMessage(ctx context.Context, conv *core.Conversation, text string) (*RoundResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &core.ValidationError{Field: "text", Reason: "message must not be empty"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	participants := append([]string(nil), conv.Participants...)

	historyEnd := conv.Len()
	before := conv.Snapshot()
	userMsg := core.Message{
		Role:      core.RoleUser,
		Content:   text,
		Timestamp: o.now(),
		Sender:    core.SenderUser,
	}
	conv.Append(userMsg)
	history := conv.RecentTurnsBefore(historyEnd, o.opts.HistoryWindow)

	result := &RoundResult{UserMessage: userMsg, RelevantMemories: o.searchMemories(participants, text)}
	o.storeUserMessage(before, participants, text)

	adapters, err := o.resolve(participants)
	if err != nil {
		o.commitFailure(conv, result, err)
		o.logRound(modeReactive, 0, start, err)
		return result, err
	}

	tasks := make([]task, len(participants))
	for i, pid := range participants {
		mems := result.RelevantMemories[pid]
		tasks[i] = task{index: i, pid: pid, adapter: adapters[i], prompt: composePrompt(text, mems), memories: len(mems)}
	}

	outcomes, err := o.fanOut(ctx, tasks, history)
	calls := attemptedCount(outcomes)
	if err != nil {
		o.logRound(modeReactive, calls, start, err)
		return result, err
	}

	err = o.commit(conv, result, outcomes)
	o.logRound(modeReactive, calls, start, err)
	return result, err
}

func (o *Orchestrator) commit(conv *core.Conversation, result *RoundResult, outcomes []outcome) error {
	if o.opts.OnFailure == FailAbort {
		for _, oc := range outcomes {
			if oc.err != nil {
				o.commitFailure(conv, result, oc.err)
				return oc.err
			}
		}
	}

	var errs []error
	msgs := make([]core.Message, 0, len(outcomes))
	for _, oc := range outcomes {
		if !oc.attempted {
			continue
		}
		if oc.err != nil {
			errs = append(errs, oc.err)
			msgs = append(msgs, core.Message{
				Role:      core.RoleAssistant,
				Content:   "Error: " + oc.err.Error(),
				Timestamp: o.now(),
				Sender:    oc.pid,
				IsError:   true,
			})
			continue
		}
		msgs = append(msgs, core.Message{
			Role:           core.RoleAssistant,
			Content:        oc.text,
			Timestamp:      o.now(),
			Sender:         oc.pid,
			UsedMemories:   oc.memories,
			MemoryEnhanced: oc.memories > 0,
		})
	}
	conv.Append(msgs...)
	result.Responses = msgs
	o.storeResponses(conv, msgs)
	return errors.Join(errs...)
}

// commitFailure appends the single synthetic error message of an aborted round.
func (o *Orchestrator) commitFailure(conv *core.Conversation, result *RoundResult, err error) {
	msg := core.Message{
		Role:      core.RoleAssistant,
		Content:   "Error: Failed to get responses. " + err.Error(),
		Timestamp: o.now(),
		Sender:    core.SenderSystem,
		IsError:   true,
	}
	conv.Append(msg)
	result.Responses = []core.Message{msg}
}

func (o *Orchestrator) searchMemories(participants []string, query string) map[string][]core.RelevanceResult {
	found := make(map[string][]core.RelevanceResult, len(participants))
	if o.memory == nil {
		return found
	}
	for _, pid := range participants {
		res, err := o.memory.Search(pid, query, 0)
		if err != nil {
			o.opts.Logger.Warn("Memory search failed", "participant", pid, "error", err)
			continue
		}
		if len(res) > 0 {
			found[pid] = res
		}
	}
	return found
}

func (o *Orchestrator) autoStore() bool {
	if o.memory == nil {
		return false
	}
	cfg := o.memory.Config()
	return cfg.Enabled && cfg.AutoStore
}

// storeUserMessage records the message against the conversation as it was
// before the message was appended.
func (o *Orchestrator) storeUserMessage(snap core.ConversationSnapshot, participants []string, text string) {
	if !o.autoStore() {
		return
	}
	for _, pid := range participants {
		if _, err := o.memory.Store(pid, text, core.StoreMetadata{
			Category:     core.CategoryUserMessage,
			Sender:       core.SenderUser,
			Conversation: &snap,
		}); err != nil {
			o.opts.Logger.Warn("Storing user message failed", "participant", pid, "error", err)
		}
	}
}

func (o *Orchestrator) storeResponses(conv *core.Conversation, msgs []core.Message) {
	if !o.autoStore() {
		return
	}
	snap := conv.Snapshot()
	for _, m := range msgs {
		if m.IsError || utf8.RuneCountInString(m.Content) <= MinAutoStoreLength {
			continue
		}
		if _, err := o.memory.Store(m.Sender, m.Content, core.StoreMetadata{
			Category:     core.CategoryAIResponse,
			Sender:       m.Sender,
			Conversation: &snap,
		}); err != nil {
			o.opts.Logger.Warn("Storing response failed", "participant", m.Sender, "error", err)
		}
	}
}

func attemptedCount(outcomes []outcome) int {
	n := 0
	for _, oc := range outcomes {
		if oc.attempted {
			n++
		}
	}
	return n
}
