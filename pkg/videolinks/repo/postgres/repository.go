// Package postgres implements the videolinks repositories over a
// WordPress-style schema (wp_posts, wp_postmeta, wp_terms,
// wp_term_relationships, as3cf_items) using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamvault/video-links/pkg/videolinks"
)

// DBTX is satisfied by both a pgx pool and a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements videolinks.MetadataRepository,
// videolinks.TaxonomyRepository and videolinks.StorageIndexRepository.
type Repository struct {
	db DBTX
}

// New creates a repository over any DBTX.
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a repository backed by a connection pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) GetMeta(ctx context.Context, postID int64, key string) (string, error) {
	query := `
		SELECT COALESCE(meta_value, '')
		FROM wp_postmeta
		WHERE post_id = $1 AND meta_key = $2
		ORDER BY meta_id
		LIMIT 1`

	var value string
	err := r.db.QueryRow(ctx, query, postID, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", r.handlePostgresError("get meta", err)
	}
	return value, nil
}

func (r *Repository) ListMeta(ctx context.Context, postID int64, keys []string) ([]videolinks.MetaRow, error) {
	query := `
		SELECT meta_key, COALESCE(meta_value, '')
		FROM wp_postmeta
		WHERE post_id = $1 AND meta_key = ANY($2)
		ORDER BY meta_id`

	rows, err := r.db.Query(ctx, query, postID, keys)
	if err != nil {
		return nil, r.handlePostgresError("list meta", err)
	}
	defer rows.Close()

	var result []videolinks.MetaRow
	for rows.Next() {
		var row videolinks.MetaRow
		if err := rows.Scan(&row.Key, &row.Value); err != nil {
			return nil, r.handlePostgresError("list meta", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list meta", err)
	}
	return result, nil
}

func (r *Repository) GetMetaBatch(ctx context.Context, postIDs []int64, key string) (map[int64]string, error) {
	query := `
		SELECT post_id, COALESCE(meta_value, '')
		FROM wp_postmeta
		WHERE meta_key = $1 AND post_id = ANY($2)
		ORDER BY meta_id`

	rows, err := r.db.Query(ctx, query, key, postIDs)
	if err != nil {
		return nil, r.handlePostgresError("get meta batch", err)
	}
	defer rows.Close()

	values := make(map[int64]string)
	for rows.Next() {
		var id int64
		var value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, r.handlePostgresError("get meta batch", err)
		}
		if _, ok := values[id]; !ok {
			values[id] = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("get meta batch", err)
	}
	return values, nil
}

func (r *Repository) ListChildren(ctx context.Context, parentID int64, postType, joinMetaKey string) ([]videolinks.ChildRow, error) {
	query := `
		SELECT p.id, COALESCE(p.post_title, ''), COALESCE(pm.meta_value, '')
		FROM wp_posts p
		INNER JOIN wp_postmeta pm ON pm.post_id = p.id AND pm.meta_key = $3
		WHERE p.post_parent = $1 AND p.post_type = $2
		ORDER BY p.id`

	rows, err := r.db.Query(ctx, query, parentID, postType, joinMetaKey)
	if err != nil {
		return nil, r.handlePostgresError("list children", err)
	}
	defer rows.Close()

	var children []videolinks.ChildRow
	for rows.Next() {
		var child videolinks.ChildRow
		if err := rows.Scan(&child.ID, &child.Title, &child.MetaValue); err != nil {
			return nil, r.handlePostgresError("list children", err)
		}
		children = append(children, child)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list children", err)
	}
	return children, nil
}

func (r *Repository) ListTermNames(ctx context.Context, postID int64, names []string) ([]string, error) {
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}

	query := `
		SELECT t.name
		FROM wp_term_relationships tr
		INNER JOIN wp_terms t ON t.term_id = tr.term_taxonomy_id
		WHERE tr.object_id = $1 AND LOWER(t.name) = ANY($2)
		ORDER BY t.name DESC`

	rows, err := r.db.Query(ctx, query, postID, lowered)
	if err != nil {
		return nil, r.handlePostgresError("list term names", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, r.handlePostgresError("list term names", err)
		}
		result = append(result, name)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list term names", err)
	}
	return result, nil
}

func (r *Repository) LookupKeys(ctx context.Context, ids []int64) ([]videolinks.StorageIndexRow, error) {
	query := `
		SELECT source_id, COALESCE(path, '')
		FROM as3cf_items
		WHERE source_id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, r.handlePostgresError("lookup keys", err)
	}
	defer rows.Close()

	var result []videolinks.StorageIndexRow
	for rows.Next() {
		var row videolinks.StorageIndexRow
		if err := rows.Scan(&row.SourceID, &row.Key); err != nil {
			return nil, r.handlePostgresError("lookup keys", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("lookup keys", err)
	}
	return result, nil
}
