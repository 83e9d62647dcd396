package videolinks

// UserLevel is the caller's access tier.
type UserLevel int

// Access levels. Levels are ordered; a tier with MinLevel n is gated for
// callers below n.
const (
	LevelAnonymous UserLevel = 0
	LevelLoggedIn  UserLevel = 1
	LevelPremium   UserLevel = 2
)

// LinkKind selects which set of asset fields a link build reads.
type LinkKind string

// Link kinds. KindFull switches every tier to the paid field variants.
const (
	KindPreview LinkKind = "preview"
	KindFull    LinkKind = "full"
)

// UnavailableReason tells the caller why a gated link carries no URL.
type UnavailableReason string

// Unavailability reasons.
const (
	ReasonLogin   UnavailableReason = "login"
	ReasonPremium UnavailableReason = "premium"
)

// VideoAsset is the normalized per-video record built from postmeta. It is
// rebuilt on every resolution and never persisted. An empty URL field means
// "not available", not an error.
type VideoAsset struct {
	ID           int64  `json:"id"`
	HDFileFormat string `json:"hd_file_format"`
	SDFileFormat string `json:"sd_file_format"`

	SDSource string `json:"sd_source,omitempty"`
	SDStream string `json:"sd_stream,omitempty"`

	HDSource    string `json:"hd_source,omitempty"`
	HDStreaming string `json:"hd_streaming,omitempty"`

	SDPaidSource string `json:"sd_paid_source,omitempty"`
	SDPaidStream string `json:"sd_paid_stream,omitempty"`

	HDPaidSource    string `json:"hd_paid_source,omitempty"`
	HDPaidStreaming string `json:"hd_paid_streaming,omitempty"`

	FourKSource    string `json:"four_k_source,omitempty"`
	FourKStreaming string `json:"four_k_streaming,omitempty"`

	FourKPaidSource    string `json:"four_k_paid_source,omitempty"`
	FourKPaidStreaming string `json:"four_k_paid_streaming,omitempty"`

	FiveKStreaming     string `json:"five_k_streaming,omitempty"`
	FiveKPaidStreaming string `json:"five_k_paid_streaming,omitempty"`

	OriginalSource     string `json:"original_source,omitempty"`
	OriginalPaidSource string `json:"original_paid_source,omitempty"`
}

// Tier field keys. Each quality tier reads its URLs from the asset slots
// named by one of these keys (plus the paid variant when requested).
const (
	tierFieldSD       = "sd"
	tierFieldHD       = "hd"
	tierFieldFourK    = "four_k"
	tierFieldFiveK    = "five_k"
	tierFieldOriginal = "original"
)

// tierSlots returns the (download source, stream) URL pair backing a tier.
// Tiers without a capability report an empty string for that side.
func (a *VideoAsset) tierSlots(field string, paid bool) (source, stream string) {
	switch field {
	case tierFieldSD:
		if paid {
			return a.SDPaidSource, a.SDPaidStream
		}
		return a.SDSource, a.SDStream
	case tierFieldHD:
		if paid {
			return a.HDPaidSource, a.HDPaidStreaming
		}
		return a.HDSource, a.HDStreaming
	case tierFieldFourK:
		if paid {
			return a.FourKPaidSource, a.FourKPaidStreaming
		}
		return a.FourKSource, a.FourKStreaming
	case tierFieldFiveK:
		if paid {
			return "", a.FiveKPaidStreaming
		}
		return "", a.FiveKStreaming
	case tierFieldOriginal:
		if paid {
			return a.OriginalPaidSource, ""
		}
		return a.OriginalSource, ""
	}
	return "", ""
}

// VideoLink is one stream or download entry presented to a caller. Exactly
// one of IsStream/IsDownload is set. URL is nil when the entry is gated;
// UnavailableReason is nil only for fully entitled callers.
type VideoLink struct {
	IsStream          bool               `json:"is_stream"`
	IsDownload        bool               `json:"is_download"`
	URL               *string            `json:"url"`
	UnavailableReason *UnavailableReason `json:"unavailable_reason"`
	Projection        string             `json:"projection"`
	Stereo            string             `json:"stereo"`
	QualityName       string             `json:"quality_name"`
	QualityOrder      int                `json:"quality_order"`
}

// QualityTier describes one row of the tier table: display name, the asset
// field key its URLs come from, capability flags, sort order and the minimum
// access level.
type QualityTier struct {
	Quality  string
	Field    string
	Stream   bool
	Download bool
	Order    int
	MinLevel UserLevel
}

// defaultTiers is the fixed tier table. The dynamic "<N>K" tier for videos
// tagged above 4K is appended at build time.
func defaultTiers() []QualityTier {
	return []QualityTier{
		{Quality: "SD", Field: tierFieldSD, Stream: true, Download: true, Order: 5, MinLevel: LevelAnonymous},
		{Quality: "HD", Field: tierFieldHD, Stream: true, Download: true, Order: 15, MinLevel: LevelAnonymous},
		{Quality: "4K", Field: tierFieldFourK, Stream: true, Download: true, Order: 45, MinLevel: LevelLoggedIn},
		{Quality: "5K", Field: tierFieldFiveK, Stream: true, Download: false, Order: 55, MinLevel: LevelPremium},
	}
}

// MetaRow is one (key, value) postmeta row.
type MetaRow struct {
	Key   string
	Value string
}

// ChildRow is one child post joined with a single metadata value.
type ChildRow struct {
	ID        int64
	Title     string
	MetaValue string
}

// StorageIndexRow maps a source post to its external-storage object key.
type StorageIndexRow struct {
	SourceID int64
	Key      string
}
