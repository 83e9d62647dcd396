package videolinks

import (
	"context"
	"fmt"
	"strings"
)

// BuildVideoLinks projects an asset into the ordered stream/download list
// for one caller. Fully entitled callers only receive entries that have a
// backing URL; everyone else receives an entry for every structurally
// enabled tier capability, with the URL withheld where the gate fails.
//
// Two behaviors are intentional and load-bearing for API compatibility:
// the unavailability reason is computed once from the caller's level and the
// requested kind, not per tier, and a gated entry that passes its tier gate
// still carries that reason next to a concrete URL.
func (s *service) BuildVideoLinks(ctx context.Context, kind LinkKind, asset *VideoAsset, level UserLevel) ([]VideoLink, error) {
	links := []VideoLink{}
	if asset == nil {
		return links, nil
	}

	tiers := defaultTiers()
	maxQuality, err := s.VideoMaxQuality(ctx, asset.ID)
	if err != nil {
		return nil, &ResolveError{VideoID: asset.ID, Op: "max_quality", Err: err}
	}
	if maxQuality > 0 {
		tiers = append(tiers, QualityTier{
			Quality:  fmt.Sprintf("%dK", maxQuality),
			Field:    tierFieldOriginal,
			Download: true,
			Order:    maxQuality*10 + 5,
			MinLevel: LevelPremium,
		})
	}

	projection, stereo := splitFileFormat(asset.HDFileFormat)
	paid := kind == KindFull

	for _, tier := range tiers {
		source, stream := asset.tierSlots(tier.Field, paid)

		if level == LevelPremium {
			if tier.Stream && stream != "" {
				links = append(links, VideoLink{
					IsStream:     true,
					URL:          ptr(stream),
					Projection:   projection,
					Stereo:       stereo,
					QualityName:  tier.Quality,
					QualityOrder: tier.Order,
				})
			}
			if tier.Download && source != "" {
				links = append(links, VideoLink{
					IsDownload:   true,
					URL:          ptr(source),
					Projection:   projection,
					Stereo:       stereo,
					QualityName:  tier.Quality,
					QualityOrder: tier.Order,
				})
			}
			continue
		}

		reason := ReasonLogin
		if level == LevelLoggedIn || kind == KindFull {
			reason = ReasonPremium
		}
		gated := func(url string) *string {
			if level < tier.MinLevel || kind == KindFull {
				return nil
			}
			return ptr(url)
		}

		if tier.Stream {
			links = append(links, VideoLink{
				IsStream:          true,
				URL:               gated(stream),
				UnavailableReason: ptr(reason),
				Projection:        projection,
				Stereo:            stereo,
				QualityName:       tier.Quality,
				QualityOrder:      tier.Order,
			})
		}
		if tier.Download {
			links = append(links, VideoLink{
				IsDownload:        true,
				URL:               gated(source),
				UnavailableReason: ptr(reason),
				Projection:        projection,
				Stereo:            stereo,
				QualityName:       tier.Quality,
				QualityOrder:      tier.Order,
			})
		}
	}

	return links, nil
}

// splitFileFormat derives projection and stereo mode from a 3-part format
// string like "STEREO_180_LR".
func splitFileFormat(format string) (projection, stereo string) {
	parts := strings.Split(format, "_")
	if len(parts) > 1 {
		projection = parts[1]
	}
	if len(parts) > 2 {
		stereo = parts[2]
	}
	return projection, stereo
}

func ptr[T any](v T) *T { return &v }
