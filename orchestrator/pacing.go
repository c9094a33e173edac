package orchestrator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// pacer enforces a minimum spacing between the starts of consecutive calls.
// Time spent inside a call counts towards the interval, so a slow call is
// followed immediately. The first Wait never blocks. It also serves as the
// cancellation point between calls.
type pacer struct {
	limiter *rate.Limiter
}

func newPacer(interval time.Duration) *pacer {
	if interval <= 0 {
		return &pacer{}
	}
	return &pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (p *pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.limiter == nil {
		return nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("pacing: %w", context.DeadlineExceeded)
	}
	return nil
}
