package sched

import (
	"time"
)

// Timer is a cancellable one-shot. Cancel is idempotent and, because both the
// fire closure and Cancel run on the loop, a cancelled timer can never mutate
// a session that already ended.
type Timer struct {
	stop     *time.Timer
	canceled bool
	fired    bool
}

// Cancel stops the timer. Calling it twice, or after the fire, is a no-op.
func (t *Timer) Cancel() {
	if t == nil || t.canceled {
		return
	}
	t.canceled = true
	if t.stop != nil {
		t.stop.Stop()
	}
}

// Ticker is a cancellable periodic task.
type Ticker struct {
	done chan struct{}
}

// Stop halts the ticker. Idempotent.
func (t *Ticker) Stop() {
	if t == nil {
		return
	}
	select {
	case <-t.done:
	default:
		close(t.done)
	}
}

// Timers creates loop-bound timers. Every callback executes on the loop.
type Timers struct {
	loop *Loop
}

func NewTimers(loop *Loop) *Timers {
	return &Timers{loop: loop}
}

// After schedules fn on the loop after d unless the timer is cancelled first.
func (t *Timers) After(d time.Duration, fn func()) *Timer {
	tm := &Timer{}
	tm.stop = time.AfterFunc(d, func() {
		t.loop.Post(func() {
			if tm.canceled || tm.fired {
				return
			}
			tm.fired = true
			fn()
		})
	})
	return tm
}

// Every schedules fn on the loop at a fixed cadence until stopped.
func (t *Timers) Every(d time.Duration, fn func()) *Ticker {
	tk := &Ticker{done: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-tk.done:
				return
			case <-ticker.C:
				t.loop.Post(func() {
					select {
					case <-tk.done:
					default:
						fn()
					}
				})
			}
		}
	}()
	return tk
}
