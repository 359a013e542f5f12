package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhawaritvik/CreatorPulse/internal/retry"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 3}, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 3, Delay: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	transient := errors.New("transient")
	calls := 0
	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 3, Delay: time.Millisecond}, func() error {
		calls++
		return transient
	})

	if !errors.Is(err, retry.ErrMaxAttemptsExceeded) {
		t.Errorf("Do() error = %v, want ErrMaxAttemptsExceeded", err)
	}
	if !errors.Is(err, transient) {
		t.Errorf("Do() error = %v, want the last attempt's error wrapped", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	err := retry.Do(context.Background(), retry.Config{
		MaxAttempts: 5,
		IsRetryable: func(err error) bool { return !errors.Is(err, fatal) },
	}, func() error {
		calls++
		return fatal
	})

	if !errors.Is(err, fatal) {
		t.Errorf("Do() error = %v, want the fatal error unwrapped", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Do(ctx, retry.Config{MaxAttempts: 3}, func() error {
		t.Error("fn should not run with a cancelled context")
		return nil
	})
	if !errors.Is(err, retry.ErrContextCancelled) {
		t.Errorf("Do() error = %v, want ErrContextCancelled", err)
	}
}

func TestDo_CancelDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := retry.Do(ctx, retry.Config{MaxAttempts: 3, Delay: time.Minute}, func() error {
		calls++
		return errors.New("transient")
	})

	if !errors.Is(err, retry.ErrContextCancelled) {
		t.Errorf("Do() error = %v, want ErrContextCancelled (delay interrupted)", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1 (cancelled during backoff)", calls)
	}
}
