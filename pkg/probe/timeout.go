package probe

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// withTimeout runs op and gives up after d. A stuck operation keeps running
// in its goroutine; its result is discarded.
//
// Returns ErrTimeout when d elapses and the context error when ctx is
// cancelled first. d <= 0 runs op inline.
func withTimeout(ctx context.Context, d time.Duration, op func() error) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return op()
	}

	opCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op()
	}()

	select {
	case err := <-done:
		return err
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrTimeout, d)
		}
		return opCtx.Err()
	}
}
