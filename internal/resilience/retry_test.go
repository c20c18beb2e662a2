package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lecturelab/quizforge/internal/model"
)

func transientCompletionErr(status int) error {
	return NewTransientError(eris.Errorf("ollama: unexpected status %d", status), status)
}

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	var calls int
	err := Do(context.Background(), RetryConfig{InitialBackoff: time.Millisecond}, func(_ context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_SuccessAfterRetry(t *testing.T) {
	var calls int
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
		Multiplier:     2.0,
	}

	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		if calls < 3 {
			return transientCompletionErr(503)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	var calls int
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
		Multiplier:     2.0,
	}

	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		return transientCompletionErr(500)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_NonTransientError_NoRetry(t *testing.T) {
	var calls int
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
	}

	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		return eris.New("ollama: response envelope missing response field")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "permanent completion errors must not be retried")
}

func TestDo_ContextCancelled_StopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	cfg := RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     100 * time.Millisecond,
		Multiplier:     2.0,
	}

	err := Do(ctx, cfg, func(_ context.Context) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return transientCompletionErr(500)
	})
	require.Error(t, err)
	assert.LessOrEqual(t, calls, 3, "retries must stop once the request is cancelled")
}

func TestDo_SentinelShouldRetry(t *testing.T) {
	// The generator retries full passes on an empty-pass sentinel, which is
	// not transient in the transport sense.
	emptyPass := eris.New("chunk pass produced no questions")

	var calls int
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		ShouldRetry: func(err error) bool {
			return eris.Is(err, emptyPass)
		},
	}

	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		if calls == 1 {
			return emptyPass
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_OnRetryCallback(t *testing.T) {
	var retryAttempts []int
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		OnRetry: func(attempt int, _ error) {
			retryAttempts = append(retryAttempts, attempt)
		},
	}

	_ = Do(context.Background(), cfg, func(_ context.Context) error {
		return transientCompletionErr(502)
	})

	assert.Equal(t, []int{1, 2}, retryAttempts)
}

func TestDoVal_ReturnsValueOnSuccess(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: time.Millisecond}

	var calls int
	questions, err := DoVal(context.Background(), cfg, func(_ context.Context) ([]model.Question, error) {
		calls++
		if calls < 2 {
			return nil, transientCompletionErr(503)
		}
		return []model.Question{{Question: "What is DNS?", Options: []string{"Names", "Pipes"}}}, nil
	})
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "What is DNS?", questions[0].Question)
}

func TestDoVal_ReturnsZeroOnFailure(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
	}

	questions, err := DoVal(context.Background(), cfg, func(_ context.Context) ([]model.Question, error) {
		return []model.Question{{Question: "discarded"}}, transientCompletionErr(500)
	})
	require.Error(t, err)
	assert.Nil(t, questions, "the zero value is returned when every attempt fails")
}

func TestComputeBackoff_ExponentialGrowth(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
	})

	// The pass-retry schedule: 1s after the first empty pass, 2s after the
	// second.
	assert.Equal(t, time.Second, computeBackoff(0, cfg))
	assert.Equal(t, 2*time.Second, computeBackoff(1, cfg))
	assert.Equal(t, 4*time.Second, computeBackoff(2, cfg))
}

func TestComputeBackoff_CapsAtMax(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     5 * time.Second,
		Multiplier:     10.0,
	})

	assert.LessOrEqual(t, computeBackoff(5, cfg), 5*time.Second)
}

func TestRetryLogger(t *testing.T) {
	logger := RetryLogger("ollama", "generate")
	require.NotPanics(t, func() {
		logger(1, transientCompletionErr(503))
	})
}
