package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamvault/video-links/pkg/videolinks"
	"github.com/streamvault/video-links/pkg/videolinks/repo/memory"
)

func TestGetMeta_FirstRowWins(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	repo.SetMeta(1, "video_link", "first")
	repo.SetMeta(1, "video_link", "second")

	value, err := repo.GetMeta(ctx, 1, "video_link")
	require.NoError(t, err)
	assert.Equal(t, "first", value)
}

func TestGetMeta_AbsentIsEmpty(t *testing.T) {
	repo := memory.New()

	value, err := repo.GetMeta(context.Background(), 1, "missing")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestListMeta_KeepsStoreOrderAndDuplicates(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	repo.SetMeta(1, "video", "100")
	repo.SetMeta(1, "newts", "1")
	repo.SetMeta(1, "video", "200")
	repo.SetMeta(1, "ignored", "x")

	rows, err := repo.ListMeta(ctx, 1, []string{"video", "newts"})
	require.NoError(t, err)
	assert.Equal(t, []videolinks.MetaRow{
		{Key: "video", Value: "100"},
		{Key: "newts", Value: "1"},
		{Key: "video", Value: "200"},
	}, rows)
}

func TestGetMetaBatch(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	repo.SetMeta(1, "amazonS3_info", "blob-1")
	repo.SetMeta(2, "amazonS3_info", "blob-2a")
	repo.SetMeta(2, "amazonS3_info", "blob-2b")

	values, err := repo.GetMetaBatch(ctx, []int64{1, 2, 3}, "amazonS3_info")
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{1: "blob-1", 2: "blob-2a"}, values)
}

func TestListChildren_InnerJoinSemantics(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	repo.AddPost(memory.Post{ID: 10, ParentID: 1, Type: "attachment", Title: "with meta"})
	repo.SetMeta(10, "amazonS3_info", "blob")
	repo.AddPost(memory.Post{ID: 11, ParentID: 1, Type: "attachment", Title: "without meta"})
	repo.AddPost(memory.Post{ID: 12, ParentID: 1, Type: "dlm_download_version", Title: "wrong type"})
	repo.SetMeta(12, "amazonS3_info", "blob")
	repo.AddPost(memory.Post{ID: 13, ParentID: 2, Type: "attachment", Title: "wrong parent"})
	repo.SetMeta(13, "amazonS3_info", "blob")

	children, err := repo.ListChildren(ctx, 1, "attachment", "amazonS3_info")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, int64(10), children[0].ID)
	assert.Equal(t, "with meta", children[0].Title)
	assert.Equal(t, "blob", children[0].MetaValue)
}

func TestListChildren_InsertionOrder(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	repo.AddPost(memory.Post{ID: 20, ParentID: 1, Type: "attachment"})
	repo.SetMeta(20, "_files", "a")
	repo.AddPost(memory.Post{ID: 21, ParentID: 1, Type: "attachment"})
	repo.SetMeta(21, "_files", "b")

	children, err := repo.ListChildren(ctx, 1, "attachment", "_files")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, int64(20), children[0].ID)
	assert.Equal(t, int64(21), children[1].ID)
}

func TestListTermNames(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	repo.AddTerm(1, "4K")
	repo.AddTerm(1, "featured")
	repo.AddTerm(1, "8k")
	repo.AddTerm(1, "5K")

	names, err := repo.ListTermNames(ctx, 1, []string{"4k", "5k", "6k", "7k", "8k"})
	require.NoError(t, err)
	// Descending name order, non-candidates filtered out.
	assert.Equal(t, []string{"8k", "5K", "4K"}, names)
}

func TestLookupKeys(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	repo.SetStorageKey(1, "files/a.mp4")
	repo.SetStorageKey(2, "files/b.mp4")

	rows, err := repo.LookupKeys(ctx, []int64{1, 3})
	require.NoError(t, err)
	assert.Equal(t, []videolinks.StorageIndexRow{{SourceID: 1, Key: "files/a.mp4"}}, rows)
}
