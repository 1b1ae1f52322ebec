package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	w := TickWorker{Delay: time.Millisecond, ErrDelay: time.Millisecond}
	var ticks int
	err := w.StartTick(ctx, func(ctx context.Context) error {
		ticks++
		if ticks == 3 {
			cancel()
		}

		if ticks%2 == 0 {
			return errors.New("EOF")
		}

		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, ticks)
}
