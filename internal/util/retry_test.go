package util

import (
	"context"
	"errors"
	"testing"
)

func TestRetryWithBackoff_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), 3, func(attempt int) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("RetryWithBackoff() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestRetryWithBackoff_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), 3, func(attempt int) error {
		calls++
		if attempt == 0 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RetryWithBackoff() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	wantErr := errors.New("persistent")
	err := RetryWithBackoff(context.Background(), 0, func(attempt int) error {
		return wantErr
	})
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected wrapped %v, got %v", wantErr, err)
	}
}

func TestRetryWithBackoff_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithBackoff(ctx, 3, func(attempt int) error {
		calls++
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call before cancellation check, got %d", calls)
	}
}
