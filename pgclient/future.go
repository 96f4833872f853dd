// Copyright (c) 2025 Pgbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pgclient

import (
	"context"

	"pgbridge/pgerr"
)

// Future is the non-blocking calling convention: a handle to a pipeline
// scheduled on the client's background loop, resolving on completion.
//
// Abandoning a Future does not cancel the in-flight work; the statement runs
// to completion server-side regardless. The context passed to Wait only
// bounds the wait itself.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// complete resolves the future. Must be called exactly once.
func (f *Future[T]) complete(val T, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// failed returns a future already resolved with err.
func failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.complete(zero, err)
	return f
}

// Done returns a channel closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the result is available or ctx expires.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, pgerr.Wrap(pgerr.RuntimeFailed, "wait interrupted", ctx.Err())
	}
}
