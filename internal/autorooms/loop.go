package autorooms

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// ErrLoopStopped is returned when work is submitted after shutdown.
var ErrLoopStopped = errors.New("autorooms: loop stopped")

// Loop serializes all registry and room mutations onto one goroutine.
// Gateway handlers enqueue via Dispatch; the web layer reads via Call
// with a bounded wait. Nothing mutates a Room off this goroutine.
type Loop struct {
	tasks chan func()
	done  chan struct{}
}

func NewLoop(buffer int) *Loop {
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run drains tasks until ctx is done. Task panics are recovered so one
// bad handler cannot stop event processing.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "autorooms.loop").Any("panic", r).Msg("task panicked")
		}
	}()
	fn()
}

// Dispatch schedules fn without waiting. Returns false once stopped.
func (l *Loop) Dispatch(fn func()) bool {
	select {
	case <-l.done:
		return false
	case l.tasks <- fn:
		return true
	}
}

// Call runs fn on the loop and waits for it to finish, bounded by ctx.
// Results travel through the closure.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	wrapped := func() {
		defer close(ran)
		fn()
	}
	select {
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	case l.tasks <- wrapped:
	}
	select {
	case <-ran:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case <-ran:
			return nil
		default:
			return ErrLoopStopped
		}
	}
}
