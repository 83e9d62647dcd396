package videolinks

import "context"

// MetadataRepository reads posts and postmeta. All methods are read-only and
// report absence with empty results, never with an error.
type MetadataRepository interface {
	// GetMeta returns the value of a single metadata key for a post, or ""
	// when the key is not set. When duplicate rows exist the first row in
	// store order wins.
	GetMeta(ctx context.Context, postID int64, key string) (string, error)

	// ListMeta returns all rows for the given keys in store order.
	// Duplicate keys are returned as-is; callers decide the tie-break.
	ListMeta(ctx context.Context, postID int64, keys []string) ([]MetaRow, error)

	// GetMetaBatch returns the value of one metadata key for many posts.
	// Posts without the key are absent from the result.
	GetMetaBatch(ctx context.Context, postIDs []int64, key string) (map[int64]string, error)

	// ListChildren returns the children of a post with the given post type,
	// inner-joined with one metadata key. Children lacking the key are not
	// returned. Order is store order and is the defined tie-break order for
	// all child scans.
	ListChildren(ctx context.Context, parentID int64, postType, joinMetaKey string) ([]ChildRow, error)
}

// TaxonomyRepository reads term associations for a post.
type TaxonomyRepository interface {
	// ListTermNames returns the names of terms attached to the post whose
	// lowercased name is in names, sorted descending by name.
	ListTermNames(ctx context.Context, postID int64, names []string) ([]string, error)
}

// StorageIndexRepository is the precomputed source-id to object-key index
// used as the fast path for batch CDN resolution.
type StorageIndexRepository interface {
	// LookupKeys returns index rows for the given ids. Ids without an index
	// entry are simply absent.
	LookupKeys(ctx context.Context, ids []int64) ([]StorageIndexRow, error)
}
