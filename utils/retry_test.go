package utils

import (
	"errors"
	"testing"
	"time"
)

func TestRetryStopsOnSuccess(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger(false)}

	calls := 0
	err := r.Do("flaky", func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d; want 2", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger(false)}

	calls := 0
	err := r.Do("broken", func() error {
		calls++
		return errors.New("permanent")
	})
	if err == nil {
		t.Fatal("Do should fail after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("calls = %d; want 3", calls)
	}
}

func TestRetrySkippableReturnsImmediately(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, Logger: NewLogger(false)}

	calls := 0
	err := r.Do("challenged", func() error {
		calls++
		return Skippable(errors.New("bot challenge"))
	})
	if err == nil {
		t.Fatal("Do should surface the skippable error")
	}
	if !IsSkippable(err) {
		t.Error("error lost its skippable classification")
	}
	if calls != 1 {
		t.Errorf("calls = %d; want 1 (no retry on skippable failures)", calls)
	}
}
