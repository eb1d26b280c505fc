package protocol

import (
	"context"
	"sync"
	"time"
)

// Delayer enforces the settle period a controller needs between two bus
// transactions. Settle is called after every transaction and Wait before the
// next one, so an implementation may either block in Settle or defer the
// pause to Wait.
type Delayer interface {
	Wait(ctx context.Context) error
	Settle(ctx context.Context, d time.Duration) error
}

// SleepDelay blocks the calling goroutine for the whole settle period.
type SleepDelay struct{}

func (SleepDelay) Wait(context.Context) error {
	return nil
}

func (SleepDelay) Settle(_ context.Context, d time.Duration) error {
	if d > 0 {
		time.Sleep(d)
	}
	return nil
}

// ScheduledDelay returns from Settle immediately and suspends the next
// transaction in Wait until the settle deadline passes or ctx is done.
// Work done by the caller between two transactions counts towards the
// settle period.
type ScheduledDelay struct {
	mx    sync.Mutex
	until time.Time
	now   func() time.Time
}

func NewScheduledDelay() *ScheduledDelay {
	return &ScheduledDelay{now: time.Now}
}

func (s *ScheduledDelay) Wait(ctx context.Context) error {
	s.mx.Lock()
	remaining := s.until.Sub(s.now())
	s.mx.Unlock()
	if remaining <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Settle extends the pending deadline; it never shortens one armed earlier.
func (s *ScheduledDelay) Settle(_ context.Context, d time.Duration) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	deadline := s.now().Add(d)
	if deadline.After(s.until) {
		s.until = deadline
	}
	return nil
}
