package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Reveal plays a reply out word by word on a fixed cadence, the way a
// person types. One reveal covers one reply; it cannot be restarted, and
// cancelling it skips straight to the full text.
type Reveal struct {
	words    []string
	interval time.Duration

	mu      sync.Mutex
	started bool
	cancel  chan struct{}
	once    sync.Once
}

// NewReveal prepares a reveal for the given reply text
func NewReveal(text string, interval time.Duration) *Reveal {
	return &Reveal{
		words:    strings.Fields(text),
		interval: interval,
		cancel:   make(chan struct{}),
	}
}

// Run emits the growing prefix of the reply through onStep, one word per
// interval. It returns once all words are out, or early when cancelled or
// the context ends.
func (r *Reveal) Run(ctx context.Context, onStep func(partial string)) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return fmt.Errorf("reveal already consumed")
	}
	r.started = true
	r.mu.Unlock()

	var sb strings.Builder
	for i, word := range r.words {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(word)
		if onStep != nil {
			onStep(sb.String())
		}

		if i == len(r.words)-1 {
			break
		}

		if r.interval <= 0 {
			continue
		}
		timer := time.NewTimer(r.interval)
		select {
		case <-timer.C:
		case <-r.cancel:
			timer.Stop()
			return nil
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return nil
}

// Cancel stops an in-flight reveal. Safe to call any number of times.
func (r *Reveal) Cancel() {
	r.once.Do(func() { close(r.cancel) })
}
