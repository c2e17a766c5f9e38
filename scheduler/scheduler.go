// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package scheduler runs periodic background work against an
// injectable clock so that timing driven code can be tested with a
// mock clock.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Task is a function running on a fixed interval in its own goroutine.
type Task struct {
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Every calls fn every interval until the returned task is stopped.
// The first call happens one interval after Every returns. Calls never
// overlap. If fn takes longer than interval the missed ticks are
// dropped.
func Every(clk clock.Clock, interval time.Duration, fn func()) *Task {
	if clk == nil {
		clk = clock.New()
	}
	t := &Task{
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	ticker := clk.Ticker(interval)
	go func() {
		defer close(t.done)
		defer ticker.Stop()
		for {
			select {
			case <-t.quit:
				return
			case <-ticker.C:
				// Prefer quitting if both are ready.
				select {
				case <-t.quit:
					return
				default:
				}
				fn()
			}
		}
	}()
	return t
}

// Stop signals the task to exit. It does not wait for an in-flight
// call to return, use Done for that. Stop is safe to call more than
// once and from inside fn.
func (t *Task) Stop() {
	t.stopOnce.Do(func() {
		close(t.quit)
	})
}

// Done is closed once the task goroutine has exited.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// PollFunc reports whether polling is complete. A non-nil error stops
// polling and is returned to the caller.
type PollFunc func(ctx context.Context) (bool, error)

// PollUntil calls fn immediately and then every interval until it
// reports completion, returns an error, or ctx is done. In the last
// case ctx.Err() is returned.
func PollUntil(ctx context.Context, clk clock.Clock, interval time.Duration, fn PollFunc) error {
	if clk == nil {
		clk = clock.New()
	}
	for {
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		timer := clk.Timer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
