package worker

import (
	"context"
	"time"
)

// Worker background job
type Worker interface {
	Run(ctx context.Context) error
}

// TickWorker runs onTick repeatedly, waiting Delay after a successful tick
// and ErrDelay after a failed one
type TickWorker struct {
	Delay    time.Duration
	ErrDelay time.Duration
}

func (w *TickWorker) delay(err error) time.Duration {
	if err != nil {
		if w.ErrDelay > 0 {
			return w.ErrDelay
		}

		return time.Second
	}

	if w.Delay > 0 {
		return w.Delay
	}

	return time.Second
}

// StartTick blocks until ctx is done
func (w *TickWorker) StartTick(ctx context.Context, onTick func(ctx context.Context) error) error {
	dur := time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			dur = w.delay(onTick(ctx))
		}
	}
}
