package converter

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingConverter(calls *int32, results ...error) Converter {
	return Func(func(ctx context.Context, req Request) ([]byte, error) {
		n := atomic.AddInt32(calls, 1)
		if int(n) <= len(results) && results[n-1] != nil {
			return nil, results[n-1]
		}
		return []byte("docx:" + req.Markdown), nil
	})
}

func TestRetryingRetriesTransientOnce(t *testing.T) {
	var calls int32
	r := &Retrying{Next: countingConverter(&calls, &StatusError{Code: 502}), Delay: time.Millisecond}

	out, err := r.Convert(context.Background(), Request{Markdown: "# Jane"})
	require.NoError(t, err)
	assert.Equal(t, "docx:# Jane", string(out))
	assert.EqualValues(t, 2, calls)
}

func TestRetryingGivesUpAfterSecondFailure(t *testing.T) {
	var calls int32
	first := &StatusError{Code: 503}
	second := errors.New("read: connection reset by peer")
	r := &Retrying{Next: countingConverter(&calls, first, second), Delay: time.Millisecond}

	_, err := r.Convert(context.Background(), Request{})
	assert.ErrorIs(t, err, second)
	assert.EqualValues(t, 2, calls)
}

func TestRetryingSkipsPermanentErrors(t *testing.T) {
	tests := []error{
		&StatusError{Code: 400, Body: "bad markdown"},
		errors.New("unsupported format"),
	}
	for _, failure := range tests {
		var calls int32
		r := &Retrying{Next: countingConverter(&calls, failure), Delay: time.Millisecond}

		_, err := r.Convert(context.Background(), Request{})
		assert.ErrorIs(t, err, failure)
		assert.EqualValues(t, 1, calls, "error %v", failure)
	}
}

func TestRetryingStopsWhenContextEnds(t *testing.T) {
	var calls int32
	ctx, cancel := context.WithCancel(context.Background())
	r := &Retrying{
		Next: Func(func(context.Context, Request) ([]byte, error) {
			atomic.AddInt32(&calls, 1)
			cancel()
			return nil, &StatusError{Code: 500}
		}),
		Delay: time.Hour,
	}

	_, err := r.Convert(ctx, Request{})
	require.Error(t, err)
	assert.EqualValues(t, 1, calls)
}

func TestStatusErrorMessage(t *testing.T) {
	assert.Equal(t, "converter http status 502", (&StatusError{Code: 502}).Error())
	assert.Equal(t, "converter http status 400: nope", (&StatusError{Code: 400, Body: "nope"}).Error())
}

func TestBreakerWrapsFailuresAsUnavailable(t *testing.T) {
	boom := errors.New("boom")
	b := NewBreaker(Func(func(context.Context, Request) ([]byte, error) {
		return nil, boom
	}), DefaultBreakerConfig("test-wrap"))

	_, err := b.Convert(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls int32
	cfg := DefaultBreakerConfig("test-open")
	cfg.MinRequests = 3
	cfg.FailureThreshold = 1
	cfg.Timeout = time.Hour
	b := NewBreaker(Func(func(context.Context, Request) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return nil, &StatusError{Code: 500}
	}), cfg)

	for i := 0; i < 3; i++ {
		_, err := b.Convert(context.Background(), Request{})
		require.ErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Convert(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.EqualValues(t, 3, calls, "open breaker must not call the converter")
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	var calls int32
	b := NewBreaker(countingConverter(&calls), DefaultBreakerConfig("test-ok"))

	out, err := b.Convert(context.Background(), Request{Markdown: "x"})
	require.NoError(t, err)
	assert.Equal(t, "docx:x", string(out))
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
