package broadcast

import (
	"context"
	"testing"
	"time"
)

func TestBudgetAcquireRelease(t *testing.T) {
	t.Parallel()

	b := NewConcurrencyBudget(2)
	if got := b.Cap(); got != 2 {
		t.Fatalf("Cap() = %d, want 2", got)
	}

	ctx := context.Background()
	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got := b.InFlight(); got != 2 {
		t.Fatalf("InFlight() = %d, want 2", got)
	}
	if b.TryAcquire() {
		t.Fatal("TryAcquire succeeded on a full budget")
	}

	b.Release()
	if got := b.InFlight(); got != 1 {
		t.Fatalf("InFlight() after release = %d, want 1", got)
	}
	if !b.TryAcquire() {
		t.Fatal("TryAcquire failed with a free slot")
	}
}

func TestBudgetClampsToOne(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -5} {
		if got := NewConcurrencyBudget(n).Cap(); got != 1 {
			t.Fatalf("NewConcurrencyBudget(%d).Cap() = %d, want 1", n, got)
		}
	}
}

func TestBudgetAcquireHonorsContext(t *testing.T) {
	t.Parallel()

	b := NewConcurrencyBudget(1)
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Acquire(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Acquire on cancelled ctx = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire did not return after cancellation")
	}
}

func TestBudgetOverReleasePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("Release without Acquire did not panic")
		}
	}()
	NewConcurrencyBudget(1).Release()
}
