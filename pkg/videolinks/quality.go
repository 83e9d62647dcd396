package videolinks

import (
	"context"
	"strconv"
	"strings"
)

// qualityTierNames are the taxonomy tags that mark an extra quality tier.
// Every candidate matches "<digit>k", so the repository's descending name
// sort coincides with numeric order; the max below is still computed by
// scanning all rows rather than trusting the sort.
var qualityTierNames = []string{"4k", "5k", "6k", "7k", "8k"}

// VideoMaxQuality returns the highest extra quality tagged on the video, or
// 0 when no quality tag is present.
func (s *service) VideoMaxQuality(ctx context.Context, videoID int64) (int, error) {
	names, err := s.taxonomy.ListTermNames(ctx, videoID, qualityTierNames)
	if err != nil {
		return 0, &ResolveError{VideoID: videoID, Op: "list_terms", Err: err}
	}

	maxQuality := 0
	for _, name := range names {
		quality, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(name), "k"))
		if err != nil {
			continue
		}
		if quality > maxQuality {
			maxQuality = quality
		}
	}
	return maxQuality, nil
}
