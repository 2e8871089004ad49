package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// flakyCall fails a fixed number of times before succeeding.
type flakyCall struct {
	failures int
	calls    int
	err      error
}

func (f *flakyCall) call(context.Context) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", f.err
	}
	return "ok", nil
}

func TestGenerateWithRetriesEventualSuccess(t *testing.T) {
	t.Parallel()

	fake := &flakyCall{failures: 2, err: errors.New("boom")}

	text, err := generateWithRetries(context.Background(), discardLogger(), 3, time.Millisecond, fake.call)

	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 3, fake.calls)
}

func TestGenerateWithRetriesExhaustsAttempts(t *testing.T) {
	t.Parallel()

	fake := &flakyCall{failures: 10, err: fmt.Errorf("%w: 429", ErrRateLimited)}

	_, err := generateWithRetries(context.Background(), discardLogger(), 3, time.Millisecond, fake.call)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 3, fake.calls)
}

func TestGenerateWithRetriesFirstAttemptImmediate(t *testing.T) {
	t.Parallel()

	start := time.Now()
	fake := &flakyCall{}

	_, err := generateWithRetries(context.Background(), discardLogger(), 3, time.Second, fake.call)

	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestGenerateWithRetriesHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &flakyCall{failures: 10, err: errors.New("boom")}

	_, err := generateWithRetries(ctx, discardLogger(), 3, time.Hour, fake.call)

	require.Error(t, err)
	// The first attempt runs, its failure is noticed alongside the dead
	// context, and no hour-long backoff is entered.
	assert.Equal(t, 1, fake.calls)
}

func TestRetryStateBackoffGrowth(t *testing.T) {
	t.Parallel()

	state := retryState{maxAttempts: 3, baseDelay: 100 * time.Millisecond}

	first, ok := state.next()
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), first)

	second, ok := state.next()
	require.True(t, ok)
	assert.GreaterOrEqual(t, second, 100*time.Millisecond)
	assert.Less(t, second, 200*time.Millisecond+100*time.Millisecond)

	third, ok := state.next()
	require.True(t, ok)
	assert.GreaterOrEqual(t, third, 200*time.Millisecond)
	assert.Less(t, third, 300*time.Millisecond+100*time.Millisecond)

	_, ok = state.next()
	assert.False(t, ok)
}

func TestFallbackText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, ""},
		{"rate limited", fmt.Errorf("wrapped: %w", ErrRateLimited), "API rate limit exceeded. Please try again later."},
		{"unavailable", ErrUnavailable, "The AI model is currently unavailable. Please check your API configuration."},
		{"generic", errors.New("boom"), "Insight generation failed. Please ensure a valid Gemini API key is configured."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, FallbackText(tt.err))
		})
	}
}
