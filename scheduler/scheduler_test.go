// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestEvery(t *testing.T) {
	clk := clock.NewMock()
	var calls int32
	task := Every(clk, 5*time.Second, func() {
		atomic.AddInt32(&calls, 1)
	})

	clk.Add(4 * time.Second)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	for i := 1; i <= 3; i++ {
		clk.Add(5 * time.Second)
		expected := int32(i)
		assert.Eventually(t, func() bool {
			return atomic.LoadInt32(&calls) == expected
		}, time.Second, time.Millisecond)
	}

	task.Stop()
	task.Stop()
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not exit")
	}

	clk.Add(time.Minute)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestEveryStopFromCallback(t *testing.T) {
	var task *Task
	started := make(chan struct{})
	task = Every(nil, time.Millisecond, func() {
		<-started
		task.Stop()
	})
	close(started)
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not exit")
	}
}

func TestPollUntil(t *testing.T) {
	var calls int
	err := PollUntil(context.Background(), nil, time.Millisecond, func(ctx context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	boom := errors.New("boom")
	err = PollUntil(context.Background(), nil, time.Millisecond, func(ctx context.Context) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPollUntilTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := PollUntil(ctx, nil, 5*time.Millisecond, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
