package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	value := []byte(`[1,2]`)
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got), "stored blob must not alias the caller's slice")
}

func TestMemoryStore_UpdateSkipsWriteAndPropagatesErrors(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "k", []byte(`"a"`)))

	require.NoError(t, s.Update(ctx, "k", func(current []byte) ([]byte, bool, error) {
		assert.Equal(t, `"a"`, string(current))
		return []byte(`"b"`), false, nil
	}))
	got, _ := s.Get(ctx, "k")
	assert.Equal(t, `"a"`, string(got))

	boom := errors.New("boom")
	err := s.Update(ctx, "k", func([]byte) ([]byte, bool, error) { return nil, true, boom })
	assert.ErrorIs(t, err, boom)
	got, _ = s.Get(ctx, "k")
	assert.Equal(t, `"a"`, string(got))
}

func TestMemoryStore_UpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, "counter", func(current []byte) ([]byte, bool, error) {
				return append(current, 'x'), true, nil
			})
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Len(t, got, writers)
}
