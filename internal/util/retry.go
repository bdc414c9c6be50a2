package util

import (
	"context"
	"errors"
)

// Retry calls fn up to maxTries times until it returns nil error.
// If maxTries <= 0, it defaults to 1. Returns the last error if all attempts fail.
func Retry[T any](maxTries int, fn func() (T, error)) (T, error) {
	if maxTries <= 0 {
		maxTries = 1
	}
	var lastErr error
	var zero T
	for i := 0; i < maxTries; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return zero, lastErr
}

// RetryErr calls fn up to maxTries times until it returns nil error.
// If maxTries <= 0, it defaults to 1. Returns the last error if all attempts fail.
func RetryErr(maxTries int, fn func() error) error {
	if maxTries <= 0 {
		maxTries = 1
	}
	var lastErr error
	for i := 0; i < maxTries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// RetryWithContext calls fn up to maxTries times until it returns nil error,
// or until ctx is done. Context cancellation is never retried.
func RetryWithContext[T any](ctx context.Context, maxTries int, fn func(context.Context) (T, error)) (T, error) {
	if maxTries <= 0 {
		maxTries = 1
	}
	var lastErr error
	var zero T
	for i := 0; i < maxTries; i++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}

// RetryErrWithContext calls fn up to maxTries times until it returns nil error,
// or until ctx is done. Context cancellation is never retried.
func RetryErrWithContext(ctx context.Context, maxTries int, fn func(context.Context) error) error {
	if maxTries <= 0 {
		maxTries = 1
	}

	var lastErr error
	for i := 0; i < maxTries; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		lastErr = err
	}
	return lastErr
}
