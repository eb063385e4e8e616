package services

import (
	"context"
	"time"
)

const (
	DefaultTaskWarnAfter = 4 * time.Minute
	DefaultTaskTimeout   = 5 * time.Minute
)

// Supervisor races a unit of work against a warning timer and a hard deadline.
//
// The hard timeout is logical: the work's goroutine is not cancelled, the
// supervisor only stops waiting and reports ErrTaskTimeout. Whichever side
// finishes first wins; the late result is dropped.
type Supervisor struct {
	WarnAfter time.Duration
	Timeout   time.Duration
}

func NewSupervisor(warnAfter, timeout time.Duration) *Supervisor {
	if warnAfter <= 0 {
		warnAfter = DefaultTaskWarnAfter
	}
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	return &Supervisor{WarnAfter: warnAfter, Timeout: timeout}
}

// Run executes fn and waits for it, the warning timer and the hard deadline.
// onWarn fires at most once, only if fn is still running at that point.
func (s *Supervisor) Run(ctx context.Context, fn func(context.Context) error, onWarn func()) error {
	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	warn := time.NewTimer(s.WarnAfter)
	defer warn.Stop()
	hard := time.NewTimer(s.Timeout)
	defer hard.Stop()

	for {
		select {
		case err := <-done:
			return err
		case <-warn.C:
			if onWarn != nil {
				onWarn()
			}
		case <-hard.C:
			return ErrTaskTimeout
		}
	}
}
