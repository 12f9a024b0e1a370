package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marginote/marginote/internal/model"
	appErr "github.com/marginote/marginote/internal/pkg/errors"
	"github.com/marginote/marginote/internal/repo"
	"github.com/marginote/marginote/internal/testutil"
)

func newComment(id, highlightID string, order int) *model.Comment {
	return &model.Comment{
		ID:          id,
		HighlightID: highlightID,
		ContentID:   "c-1",
		Text:        "text " + id,
		AuthorType:  model.AuthorTypeUser,
		Order:       order,
		CreatedAt:   1000,
	}
}

func TestCommentRepoCRUD(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	comments := repo.NewCommentRepo(conn)
	ctx := context.Background()

	cm := newComment("cm-1", "h-1", 0)
	cm.AuthorType = model.AuthorTypeLLM
	cm.LLMMetadata = &model.LLMMetadata{Model: "gemini-2.0-flash", Prompt: "p", RelatedContentIDs: []string{"c-1"}}
	require.NoError(t, comments.Create(ctx, cm))

	fetched, err := comments.GetByID(ctx, "cm-1")
	require.NoError(t, err)
	require.Equal(t, model.AuthorTypeLLM, fetched.AuthorType)
	require.NotNil(t, fetched.LLMMetadata)
	require.Equal(t, "gemini-2.0-flash", fetched.LLMMetadata.Model)
	require.Equal(t, []string{"c-1"}, fetched.LLMMetadata.RelatedContentIDs)

	fetched.Text = "edited"
	require.NoError(t, comments.Update(ctx, fetched))
	fetched, err = comments.GetByID(ctx, "cm-1")
	require.NoError(t, err)
	require.Equal(t, "edited", fetched.Text)

	require.NoError(t, comments.Delete(ctx, "cm-1"))
	_, err = comments.GetByID(ctx, "cm-1")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestCommentRepoMaxOrder(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	comments := repo.NewCommentRepo(conn)
	ctx := context.Background()

	max, err := comments.MaxOrder(ctx, "h-1")
	require.NoError(t, err)
	require.Equal(t, -1, max)

	require.NoError(t, comments.Create(ctx, newComment("cm-1", "h-1", 0)))
	require.NoError(t, comments.Create(ctx, newComment("cm-2", "h-1", 1)))
	require.NoError(t, comments.Create(ctx, newComment("cm-3", "h-2", 0)))

	max, err = comments.MaxOrder(ctx, "h-1")
	require.NoError(t, err)
	require.Equal(t, 1, max)

	max, err = comments.MaxOrder(ctx, "h-2")
	require.NoError(t, err)
	require.Equal(t, 0, max)
}

func TestCommentRepoThreadOrderUnique(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	comments := repo.NewCommentRepo(conn)
	ctx := context.Background()

	require.NoError(t, comments.Create(ctx, newComment("cm-1", "h-1", 0)))
	// same position in the same thread must be rejected by the index
	require.Error(t, comments.Create(ctx, newComment("cm-2", "h-1", 0)))
	// same position in a different thread is fine
	require.NoError(t, comments.Create(ctx, newComment("cm-3", "h-2", 0)))
}

func TestCommentRepoListByHighlightOrdering(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	comments := repo.NewCommentRepo(conn)
	ctx := context.Background()

	require.NoError(t, comments.Create(ctx, newComment("cm-2", "h-1", 1)))
	require.NoError(t, comments.Create(ctx, newComment("cm-1", "h-1", 0)))
	require.NoError(t, comments.Create(ctx, newComment("cm-3", "h-1", 2)))

	thread, err := comments.ListByHighlight(ctx, "h-1")
	require.NoError(t, err)
	require.Len(t, thread, 3)
	require.Equal(t, "cm-1", thread[0].ID)
	require.Equal(t, "cm-2", thread[1].ID)
	require.Equal(t, "cm-3", thread[2].ID)
}

func TestCommentRepoDeleteOrphans(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	comments := repo.NewCommentRepo(conn)
	highlights := repo.NewHighlightRepo(conn)
	ctx := context.Background()

	h := &model.Highlight{ID: "h-1", ContentID: "c-1", SelectedText: "s", Position: []byte(`{"start_offset":0,"end_offset":1}`), Color: "#fff", CreatedAt: 1, UpdatedAt: 1}
	require.NoError(t, highlights.Create(ctx, h))
	require.NoError(t, comments.Create(ctx, newComment("cm-1", "h-1", 0)))
	require.NoError(t, comments.Create(ctx, newComment("cm-2", "h-gone", 0)))

	removed, err := comments.DeleteOrphans(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, err = comments.GetByID(ctx, "cm-1")
	require.NoError(t, err)
	_, err = comments.GetByID(ctx, "cm-2")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
