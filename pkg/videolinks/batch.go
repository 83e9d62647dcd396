package videolinks

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/streamvault/video-links/pkg/videolinks/phpserial"
)

// ResolveCDNURLs maps post ids to CDN URLs. The storage index is the fast
// path; ids it misses fall back to decoding the per-post amazonS3_info
// descriptor. Ids with neither are absent from the result.
func (s *service) ResolveCDNURLs(ctx context.Context, ids []int64) (map[int64]string, error) {
	urls := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return urls, nil
	}

	rows, err := s.index.LookupKeys(ctx, ids)
	if err != nil {
		return nil, &ResolveError{Op: "storage_index", Err: err}
	}
	for _, row := range rows {
		urls[row.SourceID] = s.cdn.Append(row.Key)
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := urls[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return urls, nil
	}

	values, err := s.meta.GetMetaBatch(ctx, missing, metaS3Info)
	if err != nil {
		return nil, &ResolveError{Op: "meta_fallback", Err: err}
	}
	for id, raw := range values {
		info, err := phpserial.Decode(raw)
		if err != nil {
			s.logger.Warn("malformed amazonS3_info descriptor", "post_id", id, "err", err)
			continue
		}
		if key := phpserial.StringField(info, "key"); key != "" {
			urls[id] = s.cdn.Append(key)
		}
	}

	return urls, nil
}

// CachedCDNResolver memoizes ResolveCDNURLs results for a TTL. Only
// resolved ids are cached; misses are re-queried every call so late index
// backfills show up without waiting for expiry.
type CachedCDNResolver struct {
	svc   Service
	cache *gocache.Cache
}

// NewCachedCDNResolver wraps a service with a TTL cache for batch CDN
// resolution.
func NewCachedCDNResolver(svc Service, ttl time.Duration) *CachedCDNResolver {
	return &CachedCDNResolver{
		svc:   svc,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// ResolveCDNURLs returns cached URLs where fresh and delegates the rest.
func (c *CachedCDNResolver) ResolveCDNURLs(ctx context.Context, ids []int64) (map[int64]string, error) {
	urls := make(map[int64]string, len(ids))
	var missing []int64
	for _, id := range ids {
		if v, ok := c.cache.Get(strconv.FormatInt(id, 10)); ok {
			urls[id] = v.(string)
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return urls, nil
	}

	resolved, err := c.svc.ResolveCDNURLs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, url := range resolved {
		c.cache.SetDefault(strconv.FormatInt(id, 10), url)
		urls[id] = url
	}
	return urls, nil
}
