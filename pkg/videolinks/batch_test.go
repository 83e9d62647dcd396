package videolinks_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamvault/video-links/pkg/videolinks"
)

func TestResolveCDNURLs(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	// A: storage-index fast path. B: serialized-blob fallback. C: neither.
	repo.SetStorageKey(1, "files/a.mp4")
	repo.SetMeta(2, "amazonS3_info", phpMap("key", "files/b.mp4"))

	urls, err := svc.ResolveCDNURLs(ctx, []int64{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, map[int64]string{
		1: testCDN + "/files/a.mp4",
		2: testCDN + "/files/b.mp4",
	}, urls)
	assert.NotContains(t, urls, int64(3))
}

func TestResolveCDNURLs_FastPathShadowsFallback(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	repo.SetStorageKey(1, "files/indexed.mp4")
	repo.SetMeta(1, "amazonS3_info", phpMap("key", "files/blob.mp4"))

	urls, err := svc.ResolveCDNURLs(ctx, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, testCDN+"/files/indexed.mp4", urls[1])
}

func TestResolveCDNURLs_MalformedBlobSkipped(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	repo.SetMeta(1, "amazonS3_info", "garbage")

	urls, err := svc.ResolveCDNURLs(ctx, []int64{1})
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestResolveCDNURLs_Empty(t *testing.T) {
	svc, _ := newTestService(t)

	urls, err := svc.ResolveCDNURLs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

// countingService counts delegated batch resolutions.
type countingService struct {
	videolinks.Service
	calls int
	ids   [][]int64
}

func (c *countingService) ResolveCDNURLs(ctx context.Context, ids []int64) (map[int64]string, error) {
	c.calls++
	c.ids = append(c.ids, ids)
	return c.Service.ResolveCDNURLs(ctx, ids)
}

func TestCachedCDNResolver(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	repo.SetStorageKey(1, "files/a.mp4")
	repo.SetStorageKey(2, "files/b.mp4")

	counting := &countingService{Service: svc}
	cached := videolinks.NewCachedCDNResolver(counting, time.Minute)

	urls, err := cached.ResolveCDNURLs(ctx, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, testCDN+"/files/a.mp4", urls[1])
	assert.Equal(t, 1, counting.calls)

	// Cached id is served without a second delegation; the new id is not.
	urls, err = cached.ResolveCDNURLs(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, testCDN+"/files/a.mp4", urls[1])
	assert.Equal(t, testCDN+"/files/b.mp4", urls[2])
	assert.Equal(t, 2, counting.calls)
	assert.Equal(t, []int64{2}, counting.ids[1])

	// Fully cached call does not delegate at all.
	_, err = cached.ResolveCDNURLs(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, counting.calls)
}

func TestCachedCDNResolver_MissesAreRetried(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	counting := &countingService{Service: svc}
	cached := videolinks.NewCachedCDNResolver(counting, time.Minute)

	urls, err := cached.ResolveCDNURLs(ctx, []int64{9})
	require.NoError(t, err)
	assert.Empty(t, urls)

	// A late index backfill shows up on the next call.
	repo.SetStorageKey(9, "files/late.mp4")
	urls, err = cached.ResolveCDNURLs(ctx, []int64{9})
	require.NoError(t, err)
	assert.Equal(t, testCDN+"/files/late.mp4", urls[9])
	assert.Equal(t, 2, counting.calls)
}
