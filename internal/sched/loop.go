package sched

import (
	"context"

	"go.uber.org/zap"
)

// Loop is the single logical execution context: every inbound event, callback
// and timer fire is a closure processed here in arrival order. World and
// session state are touched only from inside these closures, which is what
// makes the whole engine lock-free.
type Loop struct {
	ch  chan func()
	log *zap.Logger
}

func NewLoop(log *zap.Logger) *Loop {
	return &Loop{
		ch:  make(chan func(), 1024),
		log: log,
	}
}

// Post queues fn for execution on the loop. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.ch <- fn
}

// Run processes posted closures until ctx is done. A panicking closure is
// logged and the loop keeps going.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.ch:
			l.safeCall(fn)
		}
	}
}

// Drain runs everything already queued. Used by tests and shutdown.
func (l *Loop) Drain() {
	for {
		select {
		case fn := <-l.ch:
			l.safeCall(fn)
		default:
			return
		}
	}
}

func (l *Loop) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("game loop closure panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	fn()
}
