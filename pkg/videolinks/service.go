package videolinks

import "context"

// Service is the video link resolution API.
type Service interface {
	// LoadVideoAsset builds the normalized asset record for one video.
	// Returns (nil, nil) when the video has no playable asset.
	LoadVideoAsset(ctx context.Context, videoID int64) (*VideoAsset, error)

	// BuildVideoLinks projects an asset into the ordered, access-gated link
	// list. A nil asset yields an empty list.
	BuildVideoLinks(ctx context.Context, kind LinkKind, asset *VideoAsset, level UserLevel) ([]VideoLink, error)

	// VideoMaxQuality returns the highest extra quality tier (4..8) tagged
	// on the video, or 0 when none is tagged.
	VideoMaxQuality(ctx context.Context, videoID int64) (int, error)

	// ResolveCDNURLs resolves many post ids to CDN URLs in one pass. Ids
	// with no resolvable key are absent from the result.
	ResolveCDNURLs(ctx context.Context, ids []int64) (map[int64]string, error)
}
