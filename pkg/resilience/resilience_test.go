package resilience

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stride-agent/stride/pkg/errors"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	rc := DefaultRetryConfig().WithInitialDelay(time.Millisecond).WithMaxDelay(time.Millisecond)

	attempts := 0
	err := rc.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return stderrors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryStopsOnNonRecoverable(t *testing.T) {
	rc := DefaultRetryConfig().WithInitialDelay(time.Millisecond)

	attempts := 0
	err := rc.Do(context.Background(), func() error {
		attempts++
		return errors.New(errors.CodeInvalidInput, "bad params", nil)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("non-recoverable error must not be retried, got %d attempts", attempts)
	}
}

func TestRetryHonorsRecoverableFlag(t *testing.T) {
	rc := DefaultRetryConfig().
		WithMaxAttempts(3).
		WithInitialDelay(time.Millisecond).
		WithMaxDelay(time.Millisecond)

	attempts := 0
	err := rc.Do(context.Background(), func() error {
		attempts++
		return errors.New(errors.CodeLLMError, "model unavailable", nil).WithRecoverable(true)
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryContextCancel(t *testing.T) {
	rc := DefaultRetryConfig().WithInitialDelay(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rc.Do(ctx, func() error {
		return stderrors.New("transient")
	})
	if errors.CodeOf(err) != errors.CodeTimeout {
		t.Fatalf("expected timeout code on canceled context, got %v", err)
	}
}

func TestWithTimeout(t *testing.T) {
	err := WithTimeout(context.Background(), TimeoutConfig{Duration: 10 * time.Millisecond}, func() error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})
	if errors.CodeOf(err) != errors.CodeTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}

	err = WithTimeout(context.Background(), TimeoutConfig{Duration: time.Second}, func() error {
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}
