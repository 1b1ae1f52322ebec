package concurrency

import "context"

const (
	// DefaultMax default max
	DefaultMax = 256
)

// DefaultGoLimit default go limit, max:256
var DefaultGoLimit = NewGoLimit(DefaultMax)

// GoLimit go limit
type GoLimit struct {
	ch chan struct{}
}

// NewGoLimit new go limit
func NewGoLimit(max int) *GoLimit {
	if max <= 0 {
		max = 1
	}

	return &GoLimit{
		ch: make(chan struct{}, max),
	}
}

// Add add num, blocks while the limit is reached
func (g *GoLimit) Add() {
	g.ch <- struct{}{}
}

// AddContext like Add but gives up when ctx is done
func (g *GoLimit) AddContext(ctx context.Context) error {
	select {
	case g.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done remove num
func (g *GoLimit) Done() {
	<-g.ch
}

// Do run fn once a slot is free
func (g *GoLimit) Do(ctx context.Context, fn func() error) error {
	if err := g.AddContext(ctx); err != nil {
		return err
	}
	defer g.Done()

	return fn()
}

// Lane a GoLimit of one, tasks run strictly one after another in arrival order
type Lane struct {
	*GoLimit
}

// NewLane new lane
func NewLane() *Lane {
	return &Lane{GoLimit: NewGoLimit(1)}
}
