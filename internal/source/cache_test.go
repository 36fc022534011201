package source

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheWriteLoadPrune(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir, "tle", 2)

	_, _, err := c.LoadLatest()
	require.ErrorIs(t, err, ErrNoCache)

	base := time.Unix(1_700_000_000, 0)
	for i := 0; i < 4; i++ {
		require.NoError(t, c.Write([]byte{byte('a' + i)}, base.Add(time.Duration(i)*time.Hour)))
	}

	data, ts, err := c.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, "d", string(data))
	assert.Equal(t, base.Add(3*time.Hour).Unix(), ts.Unix())

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestCachePrefixesAreIndependent(t *testing.T) {
	dir := t.TempDir()
	ucs := NewCache(dir, "ucs", 3)
	orb := NewCache(dir, "tle", 3)

	require.NoError(t, ucs.Write([]byte("registry"), time.Unix(100, 0)))
	require.NoError(t, orb.Write([]byte("elements"), time.Unix(200, 0)))

	data, _, err := ucs.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, "registry", string(data))

	data, _, err = orb.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, "elements", string(data))
}

type stubFetcher struct {
	data  []byte
	err   error
	calls int
}

func (s *stubFetcher) Fetch(context.Context) ([]byte, error) {
	s.calls++
	return s.data, s.err
}

func TestCachedFetcher(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name      string
		cached    string
		cacheAge  time.Duration
		upstream  *stubFetcher
		want      string
		wantErr   bool
		wantCalls int
	}{
		{
			name:      "fresh cache skips upstream",
			cached:    "old",
			cacheAge:  time.Hour,
			upstream:  &stubFetcher{data: []byte("new")},
			want:      "old",
			wantCalls: 0,
		},
		{
			name:      "stale cache refetches",
			cached:    "old",
			cacheAge:  48 * time.Hour,
			upstream:  &stubFetcher{data: []byte("new")},
			want:      "new",
			wantCalls: 1,
		},
		{
			name:      "stale cache served on upstream failure",
			cached:    "old",
			cacheAge:  48 * time.Hour,
			upstream:  &stubFetcher{err: errors.New("down")},
			want:      "old",
			wantCalls: 1,
		},
		{
			name:      "no cache and upstream failure",
			upstream:  &stubFetcher{err: errors.New("down")},
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name:      "no cache fetches",
			upstream:  &stubFetcher{data: []byte("new")},
			want:      "new",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewCache(t.TempDir(), "tle", 3)
			if tt.cached != "" {
				require.NoError(t, cache.Write([]byte(tt.cached), now.Add(-tt.cacheAge)))
			}

			f := NewCachedFetcher(tt.upstream, cache, 24*time.Hour, testLogger)
			f.now = func() time.Time { return now }

			data, err := f.Fetch(context.Background())
			assert.Equal(t, tt.wantCalls, tt.upstream.calls)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			latest, _, err := cache.LoadLatest()
			require.NoError(t, err)
			if tt.upstream.err == nil {
				assert.Equal(t, tt.want, string(latest))
			}
		})
	}
}
