package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var processed int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&processed, 1)
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job{Type: "mail"}))
	}
	require.Eventually(t, func() bool { return atomic.LoadInt32(&processed) == 5 }, time.Second, 5*time.Millisecond)
}

func TestQueueRetriesThenGivesUp(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
		final    error
	)
	finished := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return errors.New("smtp down")
	}, QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond, OnDone: func(job Job, err error) {
		final = err
		close(finished)
	}})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1"}))
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("job never finished")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
	assert.EqualError(t, final, "smtp down")
}

func TestQueueRecoversPanics(t *testing.T) {
	result := make(chan error, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		panic("boom")
	}, QueueConfig{OnDone: func(job Job, err error) { result <- err }})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{}))
	select {
	case err := <-result:
		assert.Contains(t, err.Error(), "boom")
	case <-time.After(time.Second):
		t.Fatal("panic not reported")
	}
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	assert.ErrorIs(t, q.Enqueue(Job{}), ErrQueueStopped)
	assert.ErrorIs(t, q.TryEnqueue(Job{}), ErrQueueStopped)
}

func TestTryEnqueueReportsFullBuffer(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()
	defer close(block)

	require.NoError(t, q.TryEnqueue(Job{ID: "running"}))
	require.Eventually(t, func() bool { return len(q.jobs) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.TryEnqueue(Job{ID: "buffered"}))
	assert.ErrorIs(t, q.TryEnqueue(Job{ID: "overflow"}), ErrQueueFull)
}
