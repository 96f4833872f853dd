// Copyright (c) 2025 Pgbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pgclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"pgbridge/pgerr"
)

func TestFuture_WaitReturnsResult(t *testing.T) {
	f := newFuture[int64]()
	go f.complete(42, nil)

	got, err := f.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Wait() = %d, want 42", got)
	}

	select {
	case <-f.Done():
	default:
		t.Error("Done() channel should be closed after completion")
	}
}

func TestFuture_WaitPropagatesError(t *testing.T) {
	f := newFuture[*Result]()
	boom := pgerr.New(pgerr.ExecutionError, "relation does not exist")
	f.complete(nil, boom)

	res, err := f.Wait(context.Background())
	if res != nil {
		t.Errorf("Wait() result = %v, want nil", res)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Wait() error = %v, want %v", err, boom)
	}
}

func TestFuture_WaitHonorsContext(t *testing.T) {
	f := newFuture[int64]()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Wait(ctx)
	if err == nil {
		t.Fatal("expected context expiry error")
	}
	if pgerr.KindOf(err) != pgerr.RuntimeFailed {
		t.Errorf("kind = %q, want %q", pgerr.KindOf(err), pgerr.RuntimeFailed)
	}

	// Abandoning the wait must not break a later completion.
	f.complete(7, nil)
	got, err := f.Wait(context.Background())
	if err != nil || got != 7 {
		t.Errorf("Wait() after abandonment = %d, %v; want 7, nil", got, err)
	}
}

func TestFailedFuture(t *testing.T) {
	f := failed[int64](pgerr.New(pgerr.UnsupportedType, "bad argument"))
	_, err := f.Wait(context.Background())
	if pgerr.KindOf(err) != pgerr.UnsupportedType {
		t.Errorf("kind = %q, want %q", pgerr.KindOf(err), pgerr.UnsupportedType)
	}
}
