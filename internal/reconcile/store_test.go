package reconcile

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetSet(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Get())
	assert.Equal(t, -1.0, s.AgeSeconds())

	r := &Result{RunID: "a", GeneratedAt: time.Now().Add(-2 * time.Second)}
	s.Set(r)
	assert.Same(t, r, s.Get())
	assert.GreaterOrEqual(t, s.AgeSeconds(), 2.0)
}

func TestStoreRefreshError(t *testing.T) {
	s := NewStore()
	prev := &Result{RunID: "prev"}
	s.Set(prev)

	_, err := s.Refresh(func() (*Result, error) { return nil, errors.New("boom") })
	require.Error(t, err)
	assert.Same(t, prev, s.Get(), "failed refresh must keep the previous result")
}

func TestStoreRefreshCoalesces(t *testing.T) {
	s := NewStore()
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]*Result, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := s.Refresh(func() (*Result, error) {
				calls.Add(1)
				<-release
				return &Result{RunID: "fresh"}, nil
			})
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, "fresh", r.RunID)
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}
