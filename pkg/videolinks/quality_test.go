package videolinks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamvault/video-links/pkg/videolinks"
	"github.com/streamvault/video-links/pkg/videolinks/cdnurl"
	"github.com/streamvault/video-links/pkg/videolinks/repo/memory"
)

func TestVideoMaxQuality(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	t.Run("no tags", func(t *testing.T) {
		quality, err := svc.VideoMaxQuality(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, quality)
	})

	t.Run("unrelated tags only", func(t *testing.T) {
		repo.AddTerm(2, "featured")
		repo.AddTerm(2, "1080p")
		quality, err := svc.VideoMaxQuality(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 0, quality)
	})

	t.Run("numeric maximum wins", func(t *testing.T) {
		repo.AddTerm(3, "4K")
		repo.AddTerm(3, "5k")
		quality, err := svc.VideoMaxQuality(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 5, quality)
	})

	t.Run("case insensitive match", func(t *testing.T) {
		repo.AddTerm(4, "8K")
		quality, err := svc.VideoMaxQuality(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, 8, quality)
	})
}

// junkTaxonomy returns fixed term names regardless of the candidate filter,
// standing in for a store with dirty tag data.
type junkTaxonomy struct {
	names []string
}

func (j *junkTaxonomy) ListTermNames(ctx context.Context, postID int64, names []string) ([]string, error) {
	return j.names, nil
}

func TestVideoMaxQuality_SkipsUnparsableTags(t *testing.T) {
	repo := memory.New()
	svc, err := videolinks.New(
		videolinks.WithMetadataRepository(repo),
		videolinks.WithTaxonomyRepository(&junkTaxonomy{names: []string{"ultrak", "5K", "k"}}),
		videolinks.WithStorageIndex(repo),
		videolinks.WithCDNResolver(cdnurl.New(testCDN)),
	)
	require.NoError(t, err)

	quality, err := svc.VideoMaxQuality(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, quality)
}
