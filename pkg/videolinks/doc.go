// Package videolinks resolves playable stream and download links for video
// content stored in a WordPress-style posts/postmeta/taxonomy schema.
//
// The package is storage-agnostic: callers supply repositories for metadata,
// taxonomy and the external-storage index (see interfaces.go), and a CDN
// resolver for URL rewriting. Resolution is read-only and builds all state
// per call; a missing asset is reported as a nil result, not an error.
//
// Typical usage:
//
//	svc, err := videolinks.New(
//	    videolinks.WithMetadataRepository(metaRepo),
//	    videolinks.WithTaxonomyRepository(taxRepo),
//	    videolinks.WithStorageIndex(indexRepo),
//	    videolinks.WithCDNResolver(cdnurl.New("https://cdn.example.com")),
//	)
//	asset, err := svc.LoadVideoAsset(ctx, 679269)
//	links, err := svc.BuildVideoLinks(ctx, videolinks.KindPreview, asset, videolinks.LevelPremium)
package videolinks
