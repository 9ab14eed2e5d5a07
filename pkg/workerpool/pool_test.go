package workerpool_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/tiffin/pkg/workerpool"
)

func TestSubmitAndExecute(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 100
	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		require.NoError(t, pool.SubmitWait(func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()

	assert.EqualValues(t, n, count.Load())
}

func TestErrPoolFull(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.SubmitWait(func() {
		close(started)
		<-blocker
	}))
	<-started

	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))
	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolFull)

	close(blocker)
}

func TestErrPoolClosed(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolClosed)
	assert.ErrorIs(t, pool.SubmitWait(func() {}), workerpool.ErrPoolClosed)
}

func TestShutdownDrainsQueuedTasks(t *testing.T) {
	pool := workerpool.New(1)

	var ran atomic.Int32
	for i := 0; i < 2; i++ {
		require.NoError(t, pool.SubmitWait(func() {
			time.Sleep(5 * time.Millisecond)
			ran.Add(1)
		}))
	}
	pool.Shutdown()

	assert.EqualValues(t, 2, ran.Load())
}

func TestSubmitWaitUnblocksOnShutdown(t *testing.T) {
	pool := workerpool.New(1)
	blocker := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.SubmitWait(func() {
		close(started)
		<-blocker
	}))
	<-started
	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))

	errCh := make(chan error, 1)
	go func() { errCh <- pool.SubmitWait(func() {}) }()

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(blocker)
	}()
	pool.Shutdown()

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("SubmitWait stayed blocked after Shutdown")
	}
}

func TestPanicRecovery(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, pool.SubmitWait(func() {
		defer wg.Done()
		panic("bad task")
	}))
	wg.Wait()

	done := make(chan struct{})
	require.NoError(t, pool.SubmitWait(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not recover from panic")
	}
}
