package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

// DialogueState is the observable state of a dialogue.
type DialogueState struct {
	Active       bool
	Round        int // rounds completed so far
	CurrentIndex int // participant to speak next
}

// Dialogue lets the participants of a conversation answer each other
// round-robin around a topic.
type Dialogue struct {
	o         *Orchestrator
	conv      *core.Conversation
	topic     string
	maxRounds int

	mu    sync.Mutex
	state DialogueState
}

// NewDialogue validates the preconditions of a dialogue. No state is changed.
func (o *Orchestrator) NewDialogue(conv *core.Conversation, topic string, maxRounds int) (*Dialogue, error) {
	switch {
	case conv.Type == core.ConversationSingle:
		return nil, &core.ValidationError{Field: "type", Reason: "dialogue requires a bilateral or multilateral conversation"}
	case len(conv.Participants) < 2:
		return nil, &core.ValidationError{Field: "participants", Reason: "dialogue requires at least 2 participants"}
	case strings.TrimSpace(topic) == "":
		return nil, &core.ValidationError{Field: "topic", Reason: "discussion topic must not be empty"}
	case maxRounds < 1:
		return nil, &core.ValidationError{Field: "maxRounds", Reason: "must be at least 1"}
	}
	return &Dialogue{o: o, conv: conv, topic: topic, maxRounds: maxRounds}, nil
}

// State returns a copy of the current state.
func (d *Dialogue) State() DialogueState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Dialogue) update(fn func(s *DialogueState)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.state)
}

// Run appends the moderator topic message and then one message per round.
// Messages are committed as soon as each round completes. A failed call ends
// the dialogue: the transcript so far is kept and the error is returned
// without adding an error message. Cancellation is honoured between rounds.
// It returns the messages appended by this run.
func (d *Dialogue) Run(ctx context.Context) ([]core.Message, error) {
	d.mu.Lock()
	if d.state.Active {
		d.mu.Unlock()
		return nil, &core.ValidationError{Field: "dialogue", Reason: "already running"}
	}
	d.state = DialogueState{Active: true}
	d.mu.Unlock()
	defer d.update(func(s *DialogueState) { *s = DialogueState{} })

	o := d.o
	start := time.Now()
	participants := append([]string(nil), d.conv.Participants...)
	adapters, err := o.resolve(participants)
	if err != nil {
		o.logRound(modeDialogue, 0, start, err)
		return nil, err
	}

	topicMsg := core.Message{
		Role:      core.RoleUser,
		Content:   "Discussion Topic: " + d.topic,
		Timestamp: o.now(),
		Sender:    core.SenderModerator,
	}
	d.conv.Append(topicMsg)
	appended := []core.Message{topicMsg}

	p := newPacer(o.opts.RoundDelay)
	prev := topicMsg
	idx := 0
	calls := 0
	for round := 0; round < d.maxRounds; round++ {
		if err := p.Wait(ctx); err != nil {
			o.logRound(modeDialogue, calls, start, err)
			return appended, err
		}

		pid := participants[idx]
		history := d.conv.RecentTurns(o.opts.HistoryWindow)
		text, err := o.call(ctx, pid, adapters[idx], history, d.prompt(round, pid, prev))
		calls++
		idx = (idx + 1) % len(participants)
		d.update(func(s *DialogueState) { s.CurrentIndex = idx })
		if err != nil {
			o.logRound(modeDialogue, calls, start, err)
			return appended, err
		}

		msg := core.Message{
			Role:      core.RoleAssistant,
			Content:   text,
			Timestamp: o.now(),
			Sender:    pid,
			Metadata:  &core.MessageMetadata{RespondingTo: prev.Sender, Round: round + 1},
		}
		d.conv.Append(msg)
		appended = append(appended, msg)
		d.update(func(s *DialogueState) { s.Round = round + 1 })
		prev = msg
	}

	o.logRound(modeDialogue, calls, start, nil)
	return appended, nil
}

func (d *Dialogue) prompt(round int, pid string, prev core.Message) string {
	name := d.o.dispatch.DisplayName(pid)
	if round == 0 {
		return fmt.Sprintf("You are %s. Please share your perspective on: %s", name, d.topic)
	}
	return fmt.Sprintf(`You are %s responding to %s. Their message was: "%s". Please provide your response.`,
		name, d.o.dispatch.DisplayName(prev.Sender), prev.Content)
}
