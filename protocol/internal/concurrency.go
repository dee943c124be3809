// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package internal

import "context"

// Concurrent dispatches values to handler with at most concurrency calls in
// flight (0 means unlimited). With a concurrency of 1, values are handled one
// at a time in the order they were sent. Returns the dispatch function and a
// cleanup function that stops the workers.
func Concurrent[T any](
	concurrency uint,
	handler func(context.Context, T),
) (func(context.Context, T), func()) {
	type args struct {
		ctx context.Context
		val T
	}

	if concurrency == 0 {
		return func(ctx context.Context, val T) {
			go handler(ctx, val)
		}, func() {}
	}

	dispatch := make(chan args)
	stop := make(chan struct{})
	for range concurrency {
		go func() {
			for {
				select {
				case a := <-dispatch:
					handler(a.ctx, a.val)
				case <-stop:
					return
				}
			}
		}()
	}

	// The context controls how long the sender waits for a free worker, and
	// is passed on to the handler invocation.
	return func(ctx context.Context, val T) {
			select {
			case dispatch <- args{ctx, val}:
			case <-ctx.Done():
			case <-stop:
			}
		}, func() {
			close(stop)
		}
}
