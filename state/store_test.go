package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitat-go/types"
)

func TestWith_AppliesAndSnapshots(t *testing.T) {
	s := New()
	ok := s.With(DefaultLockTimeout, func(st *types.SystemState) {
		st.Tank.PumpOn = true
		st.Tank.MarkUpdated(42)
	})
	require.True(t, ok)

	snap, ok := s.Snapshot(DefaultLockTimeout)
	require.True(t, ok)
	assert.True(t, snap.Tank.PumpOn)
	assert.Equal(t, types.StatusOK, snap.Tank.Status)

	snap.Tank.PumpOn = false
	again, _ := s.Snapshot(DefaultLockTimeout)
	assert.True(t, again.Tank.PumpOn, "snapshot must be a copy")
}

func TestWith_TimesOutWhileHeld(t *testing.T) {
	s := New()
	held := make(chan struct{})
	done := make(chan struct{})
	go s.With(time.Second, func(*types.SystemState) {
		close(held)
		<-done
	})
	<-held

	start := time.Now()
	called := false
	ok := s.With(5*time.Millisecond, func(*types.SystemState) { called = true })
	assert.False(t, ok)
	assert.False(t, called)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)

	_, ok = s.Snapshot(0)
	assert.False(t, ok, "zero timeout must not wait")

	close(done)
	assert.Eventually(t, func() bool {
		return s.With(DefaultLockTimeout, func(*types.SystemState) {})
	}, time.Second, time.Millisecond)
}

func TestWith_MutualExclusion(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for !s.With(time.Second, func(st *types.SystemState) { st.LastServerRxMs++ }) {
				}
			}
		}()
	}
	wg.Wait()
	snap, ok := s.Snapshot(DefaultLockTimeout)
	require.True(t, ok)
	assert.Equal(t, int64(800), snap.LastServerRxMs)
}
