package intox

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntime_Lifecycle(t *testing.T) {
	session := newFakeSession(1, 2, 3, 4)
	rt := NewRuntime(sessionBackend(session))

	assert.False(t, rt.IsLoaded())
	assert.Nil(t, rt.InputBuffer())

	require.NoError(t, rt.Load(fakeModel))
	assert.True(t, rt.IsLoaded())
	assert.Len(t, rt.InputBuffer(), InputLen)

	require.NoError(t, rt.Unload())
	assert.False(t, rt.IsLoaded())
	assert.Equal(t, int32(1), session.destroyed.Load())

	// 重复 Unload 不报错
	require.NoError(t, rt.Unload())
	assert.False(t, rt.IsLoaded())
	require.NoError(t, rt.Unload())
	assert.False(t, rt.IsLoaded())
	assert.Equal(t, int32(1), session.destroyed.Load())
}

func TestRuntime_LoadReplaces(t *testing.T) {
	first := newFakeSession(1, 0, 0, 0)
	second := newFakeSession(0, 1, 0, 0)
	sessions := []*fakeSession{first, second}
	rt := NewRuntime(BackendFunc(func([]byte) (Session, error) {
		s := sessions[0]
		sessions = sessions[1:]
		return s, nil
	}))

	require.NoError(t, rt.Load(fakeModel))
	require.NoError(t, rt.Load(fakeModel))

	assert.True(t, rt.IsLoaded())
	assert.Equal(t, int32(1), first.destroyed.Load())
	assert.Zero(t, second.destroyed.Load())

	scores, err := rt.RunForward()
	require.NoError(t, err)
	assert.Equal(t, [NumClasses]float32{0, 1, 0, 0}, scores)
}

func TestRuntime_LoadFailures(t *testing.T) {
	t.Run("backend error", func(t *testing.T) {
		rt := NewRuntime(failingBackend())

		err := rt.Load(fakeModel)

		var loadErr *ModelLoadError
		require.ErrorAs(t, err, &loadErr)
		assert.ErrorIs(t, err, errBrokenModel)
		assert.False(t, rt.IsLoaded())
	})

	t.Run("empty model bytes", func(t *testing.T) {
		rt := NewRuntime(sessionBackend(newFakeSession()))

		err := rt.Load(nil)

		var loadErr *ModelLoadError
		assert.ErrorAs(t, err, &loadErr)
		assert.False(t, rt.IsLoaded())
	})

	t.Run("nil backend", func(t *testing.T) {
		err := NewRuntime(nil).Load(fakeModel)

		var loadErr *ModelLoadError
		assert.ErrorAs(t, err, &loadErr)
	})

	t.Run("input shape mismatch", func(t *testing.T) {
		session := newFakeSession()
		session.input = make([]float32, 100)
		rt := NewRuntime(sessionBackend(session))

		err := rt.Load(fakeModel)

		var loadErr *ModelLoadError
		assert.ErrorAs(t, err, &loadErr)
		assert.False(t, rt.IsLoaded())
		assert.Equal(t, int32(1), session.destroyed.Load())
	})

	t.Run("output shape mismatch", func(t *testing.T) {
		session := newFakeSession()
		session.output = make([]float32, 1000)
		rt := NewRuntime(sessionBackend(session))

		err := rt.Load(fakeModel)

		var loadErr *ModelLoadError
		assert.ErrorAs(t, err, &loadErr)
		assert.False(t, rt.IsLoaded())
		assert.Equal(t, int32(1), session.destroyed.Load())
	})

	t.Run("failed reload leaves runtime unloaded", func(t *testing.T) {
		good := newFakeSession()
		calls := 0
		rt := NewRuntime(BackendFunc(func([]byte) (Session, error) {
			calls++
			if calls == 1 {
				return good, nil
			}
			return nil, errBrokenModel
		}))

		require.NoError(t, rt.Load(fakeModel))
		require.Error(t, rt.Load(fakeModel))

		assert.False(t, rt.IsLoaded())
		assert.Equal(t, int32(1), good.destroyed.Load())
	})
}

func TestRuntime_RunForward(t *testing.T) {
	t.Run("not loaded", func(t *testing.T) {
		_, err := NewRuntime(sessionBackend(newFakeSession())).RunForward()
		assert.ErrorIs(t, err, ErrNotLoaded)
	})

	t.Run("returns copy of output", func(t *testing.T) {
		session := newFakeSession(0.5, -1, 2, 3)
		rt := NewRuntime(sessionBackend(session))
		require.NoError(t, rt.Load(fakeModel))

		scores, err := rt.RunForward()
		require.NoError(t, err)

		session.output[0] = 42
		assert.Equal(t, [NumClasses]float32{0.5, -1, 2, 3}, scores)
	})

	t.Run("run error", func(t *testing.T) {
		session := newFakeSession()
		session.run = func(_, _ []float32) error { return errors.New("kernel failed") }
		rt := NewRuntime(sessionBackend(session))
		require.NoError(t, rt.Load(fakeModel))

		_, err := rt.RunForward()
		assert.EqualError(t, err, "kernel failed")
	})
}
