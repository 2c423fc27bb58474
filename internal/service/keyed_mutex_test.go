package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex(t *testing.T) {
	t.Run("SerializesSameKey", func(t *testing.T) {
		k := newKeyedMutex()
		key := uuid.New()
		var inside, peak atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, _ := k.Lock(context.Background(), key)
				n := inside.Add(1)
				if n > peak.Load() {
					peak.Store(n)
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				unlock()
			}()
		}
		wg.Wait()
		require.EqualValues(t, 1, peak.Load())
		require.Zero(t, k.size())
	})

	t.Run("DifferentKeysDoNotBlock", func(t *testing.T) {
		k := newKeyedMutex()
		unlockA, err := k.Lock(context.Background(), uuid.New())
		require.NoError(t, err)
		defer unlockA()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		unlockB, err := k.Lock(ctx, uuid.New())
		require.NoError(t, err)
		unlockB()
	})

	t.Run("HonoursContext", func(t *testing.T) {
		k := newKeyedMutex()
		key := uuid.New()
		unlock, err := k.Lock(context.Background(), key)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = k.Lock(ctx, key)
		require.ErrorIs(t, err, context.DeadlineExceeded)

		unlock()
		unlock()
		require.Zero(t, k.size())
	})
}
