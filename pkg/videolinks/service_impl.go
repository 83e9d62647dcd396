package videolinks

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/streamvault/video-links/pkg/videolinks/cdnurl"
	"github.com/streamvault/video-links/pkg/videolinks/phpserial"
)

// Post types in the attachment hierarchy.
const (
	postTypeAttachment      = "attachment"
	postTypeDownloadVersion = "dlm_download_version"
)

// Metadata keys consulted during resolution.
const (
	metaVideo          = "video"
	metaVideoLink      = "video_link"
	metaVRFileFormat   = "vr_file_format"
	metaVRSDFileFormat = "vr_sd_file_format"

	metaSmartphoneSample = "smartphone_sample"
	metaSmartphonePaid   = "smartphone_paid"
	metaOculusSample     = "oculus_sample"
	metaOculusPaid       = "oculus_paid"
	metaFullSizePaidSD   = "full_size_video_file_paid_sd"
	metaFreeEmbed5K      = "free_embed_video_5k"
	metaOriginalFree     = "original_free"
	metaOriginalPaid     = "original_paid"

	metaNewts        = "newts"
	metaFullSize     = "full_size_video_file"
	metaFullSizePaid = "full_size_video_file_paid"
	metaFree4K       = "free_4k_streaming"
	metaPaid4K       = "paid_4k_streaming"
	metaHas4K        = "has_4k_download"

	metaS3Info       = "amazonS3_info"
	metaAttachedFile = "_wp_attached_file"
	metaFiles        = "_files"
)

// defaultHDFormat is assumed when a video carries no vr_file_format field.
const defaultHDFormat = "STEREO_180_LR"

// sdChildTitleMarker identifies the 480p child attachment among a video's
// attachment children.
const sdChildTitleMarker = "480p H.264"

// videoMetaKeys is the full set of fields loaded per video.
var videoMetaKeys = []string{
	metaVideo,
	metaSmartphoneSample,
	metaOculusSample,
	metaFree4K,
	metaFreeEmbed5K,
	metaOriginalFree,
	metaFullSizePaidSD,
	metaSmartphonePaid,
	metaOculusPaid,
	metaFullSizePaid,
	metaPaid4K,
	metaOriginalPaid,
	metaFullSize,
	metaNewts,
	metaVideoLink,
	metaVRFileFormat,
	metaVRSDFileFormat,
	metaHas4K,
}

// fieldStrategy selects how a tier field value is turned into a URL.
type fieldStrategy int

const (
	// strategyDownload resolves the value via the download-reference or
	// attachment-id path and yields a CDN URL.
	strategyDownload fieldStrategy = iota
	// strategyStorageKey reads the referenced post's amazonS3_info blob and
	// yields its raw object key.
	strategyStorageKey
)

// fieldRule maps one metadata field to the asset slots it fills. Rules run
// in table order; a field absent from the loaded map is skipped.
type fieldRule struct {
	key      string
	strategy fieldStrategy
	assign   func(*VideoAsset, string)
}

// tierFieldRules is the declarative form of the per-field tier resolution.
// free_embed_video_5k appears twice: the free and paid 5K streams share one
// source field. That is defined behavior, kept as-is.
var tierFieldRules = []fieldRule{
	{metaSmartphoneSample, strategyDownload, func(a *VideoAsset, u string) { a.HDSource, a.HDStreaming = u, u }},
	{metaFullSizePaidSD, strategyStorageKey, func(a *VideoAsset, u string) { a.SDPaidSource, a.SDPaidStream = u, u }},
	{metaSmartphonePaid, strategyDownload, func(a *VideoAsset, u string) { a.HDPaidSource, a.HDPaidStreaming = u, u }},
	{metaOculusSample, strategyDownload, func(a *VideoAsset, u string) { a.FourKSource, a.FourKStreaming = u, u }},
	{metaOculusPaid, strategyDownload, func(a *VideoAsset, u string) { a.FourKPaidSource, a.FourKPaidStreaming = u, u }},
	{metaFreeEmbed5K, strategyStorageKey, func(a *VideoAsset, u string) { a.FiveKStreaming = u }},
	{metaFreeEmbed5K, strategyStorageKey, func(a *VideoAsset, u string) { a.FiveKPaidStreaming = u }},
	{metaOriginalFree, strategyDownload, func(a *VideoAsset, u string) { a.OriginalSource = u }},
	{metaOriginalPaid, strategyDownload, func(a *VideoAsset, u string) { a.OriginalPaidSource = u }},
}

// overrideRule is one row of the newts migration pass: when the gate field
// passes, the source field's storage key replaces an already-set stream URL.
type overrideRule struct {
	key         string
	gate        string
	gateNumeric bool
	assign      func(*VideoAsset, string)
}

var newtsOverrideRules = []overrideRule{
	{metaFullSize, metaSmartphoneSample, true, func(a *VideoAsset, u string) { a.HDStreaming = u }},
	{metaFullSizePaid, metaSmartphonePaid, true, func(a *VideoAsset, u string) { a.HDPaidStreaming = u }},
	{metaFree4K, metaHas4K, false, func(a *VideoAsset, u string) { a.FourKStreaming = u }},
	{metaPaid4K, metaHas4K, false, func(a *VideoAsset, u string) { a.FourKPaidStreaming = u }},
}

// service implements Service.
type service struct {
	meta     MetadataRepository
	taxonomy TaxonomyRepository
	index    StorageIndexRepository
	cdn      *cdnurl.Resolver
	logger   *slog.Logger
}

// Option configures the service.
type Option func(*service)

// WithMetadataRepository sets the postmeta repository.
func WithMetadataRepository(repo MetadataRepository) Option {
	return func(s *service) { s.meta = repo }
}

// WithTaxonomyRepository sets the term repository.
func WithTaxonomyRepository(repo TaxonomyRepository) Option {
	return func(s *service) { s.taxonomy = repo }
}

// WithStorageIndex sets the external-storage index repository.
func WithStorageIndex(repo StorageIndexRepository) Option {
	return func(s *service) { s.index = repo }
}

// WithCDNResolver sets the CDN URL resolver.
func WithCDNResolver(r *cdnurl.Resolver) Option {
	return func(s *service) { s.cdn = r }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) { s.logger = logger }
}

// New creates a Service from the given options.
func New(options ...Option) (Service, error) {
	s := &service{}
	for _, option := range options {
		option(s)
	}

	if s.meta == nil {
		return nil, fmt.Errorf("metadata repository is required")
	}
	if s.taxonomy == nil {
		return nil, fmt.Errorf("taxonomy repository is required")
	}
	if s.index == nil {
		return nil, fmt.Errorf("storage index repository is required")
	}
	if s.cdn == nil {
		return nil, fmt.Errorf("cdn resolver is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// LoadVideoAsset loads all quality/format fields for one video and builds
// the normalized asset record. A video with neither a "video" nor a
// "video_link" field has no playable asset and yields (nil, nil).
func (s *service) LoadVideoAsset(ctx context.Context, videoID int64) (*VideoAsset, error) {
	fields, err := s.loadFields(ctx, videoID)
	if err != nil {
		return nil, &ResolveError{VideoID: videoID, Op: "load_fields", Err: err}
	}

	asset := &VideoAsset{ID: videoID}
	asset.HDFileFormat = fields[metaVRFileFormat]
	if asset.HDFileFormat == "" {
		asset.HDFileFormat = defaultHDFormat
	}
	asset.SDFileFormat = fields[metaVRSDFileFormat]
	if asset.SDFileFormat == "" {
		asset.SDFileFormat = asset.HDFileFormat
	}

	if fields[metaVideo] == "" {
		// Legacy SD-only storage: a single direct link or nothing.
		link := fields[metaVideoLink]
		if link == "" {
			return nil, nil
		}
		asset.SDSource = s.cdn.Replace(link)
		asset.SDStream = asset.SDSource
		return asset, nil
	}

	if err := s.resolveSDChild(ctx, fields[metaVideo], asset); err != nil {
		return nil, &ResolveError{VideoID: videoID, Op: "resolve_sd", Err: err}
	}

	for _, rule := range tierFieldRules {
		value := fields[rule.key]
		if value == "" {
			continue
		}
		url, err := s.resolveFieldValue(ctx, rule.strategy, value)
		if err != nil {
			return nil, &ResolveError{VideoID: videoID, Op: "resolve_" + rule.key, Err: err}
		}
		rule.assign(asset, url)
	}

	if fields[metaNewts] != "" {
		if err := s.applyNewtsOverrides(ctx, fields, asset); err != nil {
			return nil, &ResolveError{VideoID: videoID, Op: "newts_overrides", Err: err}
		}
	}

	return asset, nil
}

// loadFields reads the video's metadata rows into a map. The first row per
// key wins; duplicates are flagged because the schema promises at most one
// value per (post, key).
func (s *service) loadFields(ctx context.Context, videoID int64) (map[string]string, error) {
	rows, err := s.meta.ListMeta(ctx, videoID, videoMetaKeys)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(rows))
	for _, row := range rows {
		if _, ok := fields[row.Key]; ok {
			s.logger.Warn("duplicate postmeta row, keeping first",
				"video_id", videoID, "meta_key", row.Key)
			continue
		}
		fields[row.Key] = row.Value
	}
	return fields, nil
}

// resolveSDChild scans the attachment children of the richer video post for
// the 480p rendition. The last matching child in store order wins.
func (s *service) resolveSDChild(ctx context.Context, videoValue string, asset *VideoAsset) error {
	parentID, err := strconv.ParseInt(strings.TrimSpace(videoValue), 10, 64)
	if err != nil {
		s.logger.Warn("video field is not a post id", "value", videoValue)
		return nil
	}

	children, err := s.meta.ListChildren(ctx, parentID, postTypeAttachment, metaS3Info)
	if err != nil {
		return err
	}

	for _, child := range children {
		if !strings.Contains(child.Title, sdChildTitleMarker) {
			continue
		}
		info, err := phpserial.Decode(child.MetaValue)
		if err != nil {
			s.logger.Warn("malformed storage descriptor on attachment",
				"attachment_id", child.ID, "err", err)
			continue
		}
		if key := phpserial.StringField(info, "key"); key != "" {
			asset.SDSource = s.cdn.Replace(key)
			asset.SDStream = asset.SDSource
		}
	}
	return nil
}

// resolveFieldValue dispatches a tier field value to its strategy.
func (s *service) resolveFieldValue(ctx context.Context, strategy fieldStrategy, value string) (string, error) {
	switch strategy {
	case strategyStorageKey:
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return "", nil
		}
		return s.storageKey(ctx, id)
	default:
		return s.downloadURL(ctx, value)
	}
}

// applyNewtsOverrides re-resolves the HD/4K streaming URLs through the
// storage-descriptor path for migrated videos. Each override is gated on a
// companion field: the HD gates require the companion to be numeric, the 4K
// gates require has_4k_download to be set.
func (s *service) applyNewtsOverrides(ctx context.Context, fields map[string]string, asset *VideoAsset) error {
	for _, rule := range newtsOverrideRules {
		value := fields[rule.key]
		if value == "" {
			continue
		}
		gate := fields[rule.gate]
		if gate == "" {
			continue
		}
		if rule.gateNumeric {
			if _, err := strconv.ParseFloat(strings.TrimSpace(gate), 64); err != nil {
				continue
			}
		}
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			continue
		}
		key, err := s.storageKey(ctx, id)
		if err != nil {
			return err
		}
		rule.assign(asset, key)
	}
	return nil
}

// downloadURL resolves a tier field value that references either a download
// post or an attachment. Nothing resolvable yields "", never an error.
func (s *service) downloadURL(ctx context.Context, value string) (string, error) {
	id := extractDownloadID(value)

	if !strings.Contains(value, "download") {
		file, err := s.meta.GetMeta(ctx, id, metaAttachedFile)
		if err != nil {
			return "", err
		}
		if file == "" {
			return "", nil
		}
		return s.cdn.Replace(file), nil
	}

	children, err := s.meta.ListChildren(ctx, id, postTypeDownloadVersion, metaFiles)
	if err != nil {
		return "", err
	}

	var url string
	for _, child := range children {
		files, err := phpserial.DecodeStringList(child.MetaValue)
		if err != nil {
			s.logger.Warn("malformed _files list on download version",
				"version_id", child.ID, "err", err)
			continue
		}
		if len(files) > 0 {
			// Last child with a non-empty list wins, matching the SD
			// child scan tie-break.
			url = files[0]
		}
	}
	return url, nil
}

// storageKey reads a post's amazonS3_info descriptor and returns its object
// key, or "" when the post has no usable descriptor.
func (s *service) storageKey(ctx context.Context, postID int64) (string, error) {
	raw, err := s.meta.GetMeta(ctx, postID, metaS3Info)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", nil
	}
	info, err := phpserial.Decode(raw)
	if err != nil {
		s.logger.Warn("malformed amazonS3_info descriptor", "post_id", postID, "err", err)
		return "", nil
	}
	return phpserial.StringField(info, "key"), nil
}

// extractDownloadID pulls the numeric post id out of a tier field value. The
// value is either a bare id or a download page URL like
// "https://example.com/download/679269/".
func extractDownloadID(value string) int64 {
	parts := strings.Split(strings.Trim(value, "/"), "/")
	for i, part := range parts {
		if part == "download" && i+1 < len(parts) {
			if id, err := strconv.ParseInt(parts[i+1], 10, 64); err == nil {
				return id
			}
		}
	}
	id, _ := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	return id
}
