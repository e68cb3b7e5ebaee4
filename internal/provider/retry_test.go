package provider

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()

	assert.Equal(t, uint64(3), policy.MaxRetries)
	assert.Positive(t, policy.InitialInterval)
	assert.GreaterOrEqual(t, policy.MaxInterval, policy.InitialInterval)
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), NewGate(), fastPolicy(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), NewGate(), fastPolicy(), func() error {
		calls++
		if calls < 3 {
			return &CallError{Op: "create_item", Transient: true, Cause: fmt.Errorf("flaky")}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := &CallError{Op: "create_item", Transient: false, Cause: fmt.Errorf("bad request")}

	err := Do(context.Background(), NewGate(), fastPolicy(), func() error {
		calls++
		return permanent
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsBoundedRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), NewGate(), fastPolicy(), func() error {
		calls++
		return &CallError{Op: "search_items", Transient: true, Cause: fmt.Errorf("still flaky")}
	})

	require.Error(t, err)
	// First attempt plus MaxRetries retries
	assert.Equal(t, 4, calls)
}

func TestDoRateLimitPausesGate(t *testing.T) {
	gate := NewGate()
	calls := 0

	start := time.Now()
	err := Do(context.Background(), gate, fastPolicy(), func() error {
		calls++
		if calls == 1 {
			return &RateLimitError{RetryAfter: 30 * time.Millisecond}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	// The second attempt had to wait out the server-provided delay
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
	assert.False(t, gate.Paused())
}

func TestDoRateLimitPausesSiblingCalls(t *testing.T) {
	gate := NewGate()

	// A throttled call pauses the shared gate for the whole adapter
	require.Error(t, Do(context.Background(), gate, RetryPolicy{MaxRetries: 0, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}, func() error {
		return &RateLimitError{RetryAfter: 50 * time.Millisecond}
	}))
	require.True(t, gate.Paused())

	// A sibling call on the same gate is held back too
	start := time.Now()
	require.NoError(t, Do(context.Background(), gate, fastPolicy(), func() error {
		return nil
	}))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	gate := NewGate()
	gate.Pause(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Do(ctx, gate, fastPolicy(), func() error {
		t.Fatal("fn must not run while the gate is paused")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&RateLimitError{}))
	assert.True(t, IsRetryable(&CallError{Transient: true}))
	assert.False(t, IsRetryable(&CallError{Transient: false}))
	assert.False(t, IsRetryable(fmt.Errorf("plain")))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", &RateLimitError{})))
}

func TestPartialFailureError(t *testing.T) {
	pf := &PartialFailure{
		Created:        &Identity{ID: "abc", Key: "PP-7", URL: "memory://board/PP-7"},
		CompletedSteps: []CreateStep{StepCreateRecord, StepAssignType},
		Retryable:      true,
		Cause:          fmt.Errorf("label service down"),
	}

	msg := pf.Error()
	assert.Contains(t, msg, "PP-7")
	assert.Contains(t, msg, "create_record")
	assert.Contains(t, msg, "assign_type")
	assert.Contains(t, msg, "label service down")

	wrapped := fmt.Errorf("create T1: %w", pf)
	got, ok := AsPartialFailure(wrapped)
	require.True(t, ok)
	assert.Equal(t, "PP-7", got.Created.Key)
}
