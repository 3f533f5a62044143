package intox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Detect(t *testing.T) {
	var sessions []*fakeSession
	var mu sync.Mutex
	newEngine := func() *Engine {
		return NewEngine(BackendFunc(func([]byte) (Session, error) {
			mu.Lock()
			defer mu.Unlock()
			s := newFakeSession(0, 0, 0, 3)
			sessions = append(sessions, s)
			return s, nil
		}), DefaultConfig(), nil)
	}

	pool, err := NewPool(3, fakeModel, newEngine)
	require.NoError(t, err)
	assert.Equal(t, 3, pool.Size())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := pool.Detect(context.Background(), gradientImage(32, 32))
			assert.NoError(t, err)
			assert.Equal(t, Heavily, res.Label())
		}()
	}
	wg.Wait()

	require.NoError(t, pool.Close())
	require.NoError(t, pool.Close())

	var runs int32
	for _, s := range sessions {
		runs += s.runs.Load()
		assert.Equal(t, int32(1), s.destroyed.Load())
	}
	assert.Equal(t, int32(20), runs)

	_, err = pool.Detect(context.Background(), gradientImage(32, 32))
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPool_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	session := newFakeSession()
	session.run = func(_, out []float32) error {
		close(started)
		<-release
		copy(out, []float32{1, 0, 0, 0})
		return nil
	}
	pool, err := NewPool(1, fakeModel, func() *Engine {
		return NewEngine(sessionBackend(session), DefaultConfig(), nil)
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := pool.Detect(context.Background(), gradientImage(8, 8))
		done <- err
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.Detect(ctx, gradientImage(8, 8))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	assert.NoError(t, <-done)
	assert.NoError(t, pool.Close())
}

func TestNewPool_Errors(t *testing.T) {
	_, err := NewPool(0, fakeModel, nil)
	assert.Error(t, err)

	good := newFakeSession()
	calls := 0
	_, err = NewPool(2, fakeModel, func() *Engine {
		calls++
		if calls == 1 {
			return NewEngine(sessionBackend(good), DefaultConfig(), nil)
		}
		return NewEngine(failingBackend(), DefaultConfig(), nil)
	})

	var loadErr *ModelLoadError
	assert.ErrorAs(t, err, &loadErr)
	assert.Equal(t, int32(1), good.destroyed.Load())
}
