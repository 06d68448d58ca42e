// Package context provides cancellation helpers for CLI runs
package context

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"
)

// WithSignal returns a context that is canceled when any of sigs arrives.
// The returned cancel function stops signal delivery and must be called.
func WithSignal(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	return watch(ctx, cancel, sigs)
}

// WithSignalTimeout is WithSignal bounded by timeout. A non-positive timeout
// means no deadline.
func WithSignalTimeout(parent context.Context, timeout time.Duration, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return WithSignal(parent, sigs...)
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	return watch(ctx, cancel, sigs)
}

func watch(ctx context.Context, cancel context.CancelFunc, sigs []os.Signal) (context.Context, context.CancelFunc) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	stopCh := make(chan struct{})
	go func() {
		select {
		case <-ch:
			cancel()
		case <-stopCh:
		case <-ctx.Done():
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(ch)
			close(stopCh)
			cancel()
		})
	}
}
