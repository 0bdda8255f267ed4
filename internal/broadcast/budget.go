package broadcast

import "context"

// ConcurrencyBudget is an admission-control semaphore bounding the number
// of in-flight sends. It exists as a named component (rather than an ad-hoc
// buffered channel inside the dispatcher) so its slot accounting can be
// tested without network calls.
type ConcurrencyBudget struct {
	slots chan struct{}
}

// NewConcurrencyBudget returns a budget with n slots. n is clamped to at
// least 1.
func NewConcurrencyBudget(n int) *ConcurrencyBudget {
	if n < 1 {
		n = 1
	}
	return &ConcurrencyBudget{slots: make(chan struct{}, n)}
}

// Acquire blocks until a slot frees or ctx is done.
func (b *ConcurrencyBudget) Acquire(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot without blocking.
func (b *ConcurrencyBudget) TryAcquire() bool {
	select {
	case b.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees a slot. Releasing more than was acquired is a programming
// error and panics.
func (b *ConcurrencyBudget) Release() {
	select {
	case <-b.slots:
	default:
		panic("broadcast: budget release without acquire")
	}
}

// InFlight reports the number of currently held slots.
func (b *ConcurrencyBudget) InFlight() int { return len(b.slots) }

// Cap reports the total slot count.
func (b *ConcurrencyBudget) Cap() int { return cap(b.slots) }
