package converter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"resume-builder/internal/shared/telemetry"
)

const defaultRetryDelay = 300 * time.Millisecond

// Retrying retries a conversion once after Delay when the first attempt
// failed with a transient error.
type Retrying struct {
	Next  Converter
	Delay time.Duration
}

// NewRetrying wraps next with a single retry.
func NewRetrying(next Converter) *Retrying {
	return &Retrying{Next: next, Delay: defaultRetryDelay}
}

// Convert runs the wrapped converter, retrying once on transient failures.
func (r *Retrying) Convert(ctx context.Context, req Request) ([]byte, error) {
	out, err := r.Next.Convert(ctx, req)
	if err == nil || !shouldRetry(ctx, err) {
		return out, err
	}

	telemetry.Warn("converter.retry", map[string]any{"attempt": 1, "error": err})
	select {
	case <-time.After(r.Delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return r.Next.Convert(ctx, req)
}

func shouldRetry(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.Code >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "unexpected eof")
}

// StatusError is a non-2xx answer from a remote engine.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("converter http status %d", e.Code)
	}
	return fmt.Sprintf("converter http status %d: %s", e.Code, e.Body)
}
