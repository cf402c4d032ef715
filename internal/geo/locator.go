// Package geo supplies the visitor's position to the place ranking.
package geo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/playperu/cityguide/internal/guide"
)

var (
	ErrDenied      = errors.New("geolocation denied")
	ErrTimeout     = errors.New("geolocation timed out")
	ErrUnavailable = errors.New("geolocation unavailable")
)

// Locator is a one-shot position request.
type Locator interface {
	Locate(ctx context.Context) (guide.Position, error)
}

// Reporter accepts fixes pushed by the page.
type Reporter interface {
	Report(pos guide.Position) error
	Deny()
}

// Fixed always reports the same position.
type Fixed guide.Position

func (f Fixed) Locate(context.Context) (guide.Position, error) {
	return guide.Position(f), nil
}

// Tracker holds the fixes reported by the page. Locate answers from a
// recent enough fix, otherwise waits a bounded time for the next report.
type Tracker struct {
	timeout time.Duration
	maxAge  time.Duration
	now     func() time.Time

	mu      sync.Mutex
	last    *guide.Position
	lastAt  time.Time
	denied  bool
	waiters []chan struct{}
}

func NewTracker(timeout, maxAge time.Duration) *Tracker {
	return &Tracker{timeout: timeout, maxAge: maxAge, now: time.Now}
}

// Report records a fresh fix and wakes pending Locate calls.
func (t *Tracker) Report(pos guide.Position) error {
	if !pos.Valid() {
		return errors.New("invalid position")
	}
	t.mu.Lock()
	t.last = &pos
	t.lastAt = t.now()
	t.denied = false
	t.wake()
	t.mu.Unlock()
	return nil
}

// Deny records that the visitor refused (or the device failed) to share a
// position. Pending Locate calls fail with ErrDenied.
func (t *Tracker) Deny() {
	t.mu.Lock()
	t.denied = true
	t.wake()
	t.mu.Unlock()
}

func (t *Tracker) wake() {
	for _, w := range t.waiters {
		close(w)
	}
	t.waiters = nil
}

func (t *Tracker) Locate(ctx context.Context) (guide.Position, error) {
	t.mu.Lock()
	if pos, ok := t.fresh(); ok {
		t.mu.Unlock()
		return pos, nil
	}
	t.denied = false
	wait := make(chan struct{})
	t.waiters = append(t.waiters, wait)
	t.mu.Unlock()

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case <-wait:
	case <-timer.C:
		t.forget(wait)
		return guide.Position{}, ErrTimeout
	case <-ctx.Done():
		t.forget(wait)
		return guide.Position{}, ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.denied {
		return guide.Position{}, ErrDenied
	}
	if t.last == nil {
		return guide.Position{}, ErrUnavailable
	}
	return *t.last, nil
}

func (t *Tracker) fresh() (guide.Position, bool) {
	if t.last == nil || t.now().Sub(t.lastAt) > t.maxAge {
		return guide.Position{}, false
	}
	return *t.last, true
}

func (t *Tracker) forget(wait chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, w := range t.waiters {
		if w == wait {
			t.waiters = append(t.waiters[:i], t.waiters[i+1:]...)
			return
		}
	}
}
