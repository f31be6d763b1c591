package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsEveryJob(t *testing.T) {
	p := Start(3, 10)
	var n atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func(context.Context) {
			defer wg.Done()
			n.Add(1)
		}))
	}
	wg.Wait()
	p.Stop()
	assert.EqualValues(t, 10, n.Load())
}

func TestPoolQueueFull(t *testing.T) {
	p := Start(1, 1)
	release := make(chan struct{})
	running := make(chan struct{})
	require.NoError(t, p.Submit(func(context.Context) {
		close(running)
		<-release
	}))
	<-running
	require.NoError(t, p.Submit(func(context.Context) {}))

	assert.ErrorIs(t, p.Submit(func(context.Context) {}), ErrQueueFull)
	close(release)
	p.Stop()
}

func TestPoolStop(t *testing.T) {
	p := Start(2, 4)
	p.Stop()
	p.Stop()
	assert.ErrorIs(t, p.Submit(func(context.Context) {}), ErrStopped)
}

func TestPoolSurvivesPanic(t *testing.T) {
	p := Start(1, 2)
	done := make(chan struct{})
	require.NoError(t, p.Submit(func(context.Context) { panic("boom") }))
	require.NoError(t, p.Submit(func(context.Context) { close(done) }))
	<-done
	p.Stop()
}
