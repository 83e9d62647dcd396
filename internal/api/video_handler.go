package api

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"

	"github.com/streamvault/video-links/pkg/videolinks"
	"github.com/streamvault/video-links/pkg/videolinks/presign"
)

// VideoHandler serves video link resolution over HTTP. The response
// envelope matches the legacy API: {"status": {...}, "data": ...}.
type VideoHandler struct {
	svc       videolinks.Service
	cdnCache  *videolinks.CachedCDNResolver
	presigner *presign.Signer
	tokenAuth *jwtauth.JWTAuth
	logger    *slog.Logger
}

// NewVideoHandler creates a handler. presigner and tokenAuth may be nil;
// without a token verifier every caller is anonymous.
func NewVideoHandler(svc videolinks.Service, cdnCache *videolinks.CachedCDNResolver, presigner *presign.Signer, tokenAuth *jwtauth.JWTAuth, logger *slog.Logger) *VideoHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VideoHandler{
		svc:       svc,
		cdnCache:  cdnCache,
		presigner: presigner,
		tokenAuth: tokenAuth,
		logger:    logger,
	}
}

// Routes returns the video routes.
func (h *VideoHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestLogger(h.logger))
	if h.tokenAuth != nil {
		r.Use(jwtauth.Verifier(h.tokenAuth))
	}

	r.Get("/videos", h.ListVideos)
	r.Get("/video/{id}", h.GetVideo)
	r.Get("/video/{id}/links", h.GetVideoLinks)
	r.Get("/cdn-urls", h.ResolveCDNURLs)

	return r
}

// Status is the legacy response status block.
type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is the legacy response envelope.
type Response struct {
	Status Status `json:"status"`
	Data   any    `json:"data,omitempty"`
}

func ok(data any) Response {
	return Response{Status: Status{Code: 1, Message: "okey"}, Data: data}
}

func fail(message string) Response {
	return Response{Status: Status{Code: 0, Message: message}}
}

// VideoDetail is the data payload for GET /video/{id}.
type VideoDetail struct {
	ID           int64                  `json:"id"`
	HDFileFormat string                 `json:"hd_file_format"`
	SDFileFormat string                 `json:"sd_file_format"`
	MaxQuality   int                    `json:"max_quality"`
	Links        []videolinks.VideoLink `json:"links"`
}

// GetVideo resolves the asset and its links for the caller.
func (h *VideoHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	videoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, fail("invalid video id"))
		return
	}

	level := h.userLevel(r)
	kind := linkKind(r)

	asset, err := h.svc.LoadVideoAsset(r.Context(), videoID)
	if err != nil {
		h.logger.Error("failed to load video asset", "video_id", videoID, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, fail("internal error"))
		return
	}
	if asset == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, fail("video not found"))
		return
	}

	links, err := h.buildLinks(r, kind, asset, level)
	if err != nil {
		h.logger.Error("failed to build video links", "video_id", videoID, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, fail("internal error"))
		return
	}

	maxQuality, err := h.svc.VideoMaxQuality(r.Context(), videoID)
	if err != nil {
		h.logger.Error("failed to classify video quality", "video_id", videoID, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, fail("internal error"))
		return
	}

	render.JSON(w, r, ok(VideoDetail{
		ID:           asset.ID,
		HDFileFormat: asset.HDFileFormat,
		SDFileFormat: asset.SDFileFormat,
		MaxQuality:   maxQuality,
		Links:        links,
	}))
}

// GetVideoLinks returns only the link list.
func (h *VideoHandler) GetVideoLinks(w http.ResponseWriter, r *http.Request) {
	videoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, fail("invalid video id"))
		return
	}

	asset, err := h.svc.LoadVideoAsset(r.Context(), videoID)
	if err != nil {
		h.logger.Error("failed to load video asset", "video_id", videoID, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, fail("internal error"))
		return
	}

	links, err := h.buildLinks(r, linkKind(r), asset, h.userLevel(r))
	if err != nil {
		h.logger.Error("failed to build video links", "video_id", videoID, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, fail("internal error"))
		return
	}

	render.JSON(w, r, ok(links))
}

// buildLinks builds the gated list and, when a presigner is configured,
// swaps entitled download URLs for time-limited signed URLs.
func (h *VideoHandler) buildLinks(r *http.Request, kind videolinks.LinkKind, asset *videolinks.VideoAsset, level videolinks.UserLevel) ([]videolinks.VideoLink, error) {
	links, err := h.svc.BuildVideoLinks(r.Context(), kind, asset, level)
	if err != nil {
		return nil, err
	}

	if h.presigner == nil || level != videolinks.LevelPremium {
		return links, nil
	}
	for i := range links {
		if !links[i].IsDownload || links[i].URL == nil || *links[i].URL == "" {
			continue
		}
		signed, err := h.presigner.SignURL(r.Context(), *links[i].URL)
		if err != nil {
			h.logger.Warn("failed to presign download url", "video_id", asset.ID, "err", err)
			continue
		}
		links[i].URL = &signed
	}
	return links, nil
}

// VideoPage is the paged listing envelope.
type VideoPage struct {
	PageIndex int `json:"page_index"`
	ItemCount int `json:"item_count"`
	PageTotal int `json:"page_total"`
	ItemTotal int `json:"item_total"`
	Content   any `json:"content"`
}

// ListVideos returns the paged video listing. The backing search service is
// not wired yet; the envelope is real, the content is empty.
func (h *VideoHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page-index", 1)
	perPage := queryInt(r, "page-size", 20)
	if perPage < 1 {
		perPage = 20
	}

	itemTotal := 0
	render.JSON(w, r, ok(VideoPage{
		PageIndex: page,
		ItemCount: perPage,
		PageTotal: int(math.Ceil(float64(itemTotal) / float64(perPage))),
		ItemTotal: itemTotal,
		Content:   []any{},
	}))
}

// ResolveCDNURLs resolves a comma-separated id list to CDN URLs.
func (h *VideoHandler) ResolveCDNURLs(w http.ResponseWriter, r *http.Request) {
	var ids []int64
	for _, part := range strings.Split(r.URL.Query().Get("ids"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, fail("invalid id: "+part))
			return
		}
		ids = append(ids, id)
	}

	var (
		urls map[int64]string
		err  error
	)
	if h.cdnCache != nil {
		urls, err = h.cdnCache.ResolveCDNURLs(r.Context(), ids)
	} else {
		urls, err = h.svc.ResolveCDNURLs(r.Context(), ids)
	}
	if err != nil {
		h.logger.Error("failed to resolve cdn urls", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, fail("internal error"))
		return
	}

	out := make(map[string]string, len(urls))
	for id, url := range urls {
		out[strconv.FormatInt(id, 10)] = url
	}
	render.JSON(w, r, ok(out))
}

// userLevel derives the caller's access level from the verified token. No
// or invalid token means anonymous; the level claim is clamped to 0..2.
func (h *VideoHandler) userLevel(r *http.Request) videolinks.UserLevel {
	if h.tokenAuth == nil {
		return videolinks.LevelAnonymous
	}
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		return videolinks.LevelAnonymous
	}

	level := 0
	switch v := claims["level"].(type) {
	case float64:
		level = int(v)
	case int64:
		level = int(v)
	case string:
		level, _ = strconv.Atoi(v)
	}
	if level < 0 {
		level = 0
	}
	if level > int(videolinks.LevelPremium) {
		level = int(videolinks.LevelPremium)
	}
	return videolinks.UserLevel(level)
}

func linkKind(r *http.Request) videolinks.LinkKind {
	if r.URL.Query().Get("kind") == string(videolinks.KindFull) {
		return videolinks.KindFull
	}
	return videolinks.KindPreview
}

func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}
