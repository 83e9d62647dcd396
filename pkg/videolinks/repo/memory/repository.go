// Package memory provides an in-memory implementation of the videolinks
// repositories, used by tests and as the default backend.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/streamvault/video-links/pkg/videolinks"
)

// Post is one content item row. Children keep insertion order, which is the
// store order the resolver's tie-breaks are defined against.
type Post struct {
	ID       int64
	ParentID int64
	Type     string
	Title    string
}

// Repository implements videolinks.MetadataRepository,
// videolinks.TaxonomyRepository and videolinks.StorageIndexRepository over
// in-memory maps.
type Repository struct {
	mu    sync.RWMutex
	posts []Post
	meta  map[int64][]videolinks.MetaRow
	terms map[int64][]string
	index map[int64]string
}

// New creates an empty in-memory repository.
func New() *Repository {
	return &Repository{
		meta:  make(map[int64][]videolinks.MetaRow),
		terms: make(map[int64][]string),
		index: make(map[int64]string),
	}
}

// AddPost registers a content item.
func (r *Repository) AddPost(p Post) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append(r.posts, p)
}

// SetMeta appends a metadata row for a post. Calling it twice with the same
// key produces duplicate rows, mirroring what the real schema allows.
func (r *Repository) SetMeta(postID int64, key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meta[postID] = append(r.meta[postID], videolinks.MetaRow{Key: key, Value: value})
}

// AddTerm attaches a taxonomy term name to a post.
func (r *Repository) AddTerm(postID int64, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terms[postID] = append(r.terms[postID], name)
}

// SetStorageKey records a storage-index entry for a post.
func (r *Repository) SetStorageKey(sourceID int64, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index[sourceID] = key
}

func (r *Repository) GetMeta(ctx context.Context, postID int64, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, row := range r.meta[postID] {
		if row.Key == key {
			return row.Value, nil
		}
	}
	return "", nil
}

func (r *Repository) ListMeta(ctx context.Context, postID int64, keys []string) ([]videolinks.MetaRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}

	var rows []videolinks.MetaRow
	for _, row := range r.meta[postID] {
		if wanted[row.Key] {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *Repository) GetMetaBatch(ctx context.Context, postIDs []int64, key string) (map[int64]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values := make(map[int64]string, len(postIDs))
	for _, id := range postIDs {
		for _, row := range r.meta[id] {
			if row.Key == key {
				values[id] = row.Value
				break
			}
		}
	}
	return values, nil
}

func (r *Repository) ListChildren(ctx context.Context, parentID int64, postType, joinMetaKey string) ([]videolinks.ChildRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var children []videolinks.ChildRow
	for _, p := range r.posts {
		if p.ParentID != parentID || p.Type != postType {
			continue
		}
		// Inner-join semantics: children without the meta key are skipped.
		for _, row := range r.meta[p.ID] {
			if row.Key == joinMetaKey {
				children = append(children, videolinks.ChildRow{
					ID:        p.ID,
					Title:     p.Title,
					MetaValue: row.Value,
				})
				break
			}
		}
	}
	return children, nil
}

func (r *Repository) ListTermNames(ctx context.Context, postID int64, names []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[strings.ToLower(n)] = true
	}

	var matched []string
	for _, name := range r.terms[postID] {
		if wanted[strings.ToLower(name)] {
			matched = append(matched, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matched)))
	return matched, nil
}

func (r *Repository) LookupKeys(ctx context.Context, ids []int64) ([]videolinks.StorageIndexRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []videolinks.StorageIndexRow
	for _, id := range ids {
		if key, ok := r.index[id]; ok {
			rows = append(rows, videolinks.StorageIndexRow{SourceID: id, Key: key})
		}
	}
	return rows, nil
}
