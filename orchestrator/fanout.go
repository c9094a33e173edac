package orchestrator

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
	"github.com/aibymlorg/managing-multiagent-intelligence/model"
)

// task is one participant call of a reactive round.
type task struct {
	index    int
	pid      string
	adapter  model.Model
	prompt   string
	memories int
}

// outcome is the result of a task. attempted is false for tasks skipped
// after an abort.
type outcome struct {
	task
	attempted bool
	text      string
	err       error
}

// fanOut runs the tasks under the configured policy and returns one outcome
// per task in participant order. A non-nil error means the round was
// cancelled between calls.
func (o *Orchestrator) fanOut(ctx context.Context, tasks []task, history []core.Turn) ([]outcome, error) {
	if o.opts.FanOut == FanOutParallel && len(tasks) > 1 {
		return o.fanOutParallel(ctx, tasks, history)
	}
	return o.fanOutSequential(ctx, tasks, history)
}

func (o *Orchestrator) fanOutSequential(ctx context.Context, tasks []task, history []core.Turn) ([]outcome, error) {
	delay := o.opts.CallDelay
	if len(tasks) < 2 {
		delay = 0
	}
	p := newPacer(delay)

	outcomes := make([]outcome, len(tasks))
	for i, t := range tasks {
		outcomes[i].task = t
	}
	for i, t := range tasks {
		if err := p.Wait(ctx); err != nil {
			return outcomes, err
		}
		text, err := o.call(ctx, t.pid, t.adapter, history, t.prompt)
		outcomes[i].attempted = true
		outcomes[i].text = text
		outcomes[i].err = err
		if err != nil && o.opts.OnFailure == FailAbort {
			break
		}
	}
	return outcomes, nil
}

func (o *Orchestrator) fanOutParallel(ctx context.Context, tasks []task, history []core.Turn) ([]outcome, error) {
	outcomes := make([]outcome, len(tasks))
	var g errgroup.Group
	if o.opts.MaxParallel > 0 {
		g.SetLimit(o.opts.MaxParallel)
	}
	for i, t := range tasks {
		outcomes[i].task = t
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := o.call(ctx, t.pid, t.adapter, history, t.prompt)
			outcomes[i].attempted = true
			outcomes[i].text = text
			outcomes[i].err = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
