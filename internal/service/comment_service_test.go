package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marginote/marginote/internal/model"
	appErr "github.com/marginote/marginote/internal/pkg/errors"
	"github.com/marginote/marginote/internal/service"
)

func createHighlight(t *testing.T, e *env) *model.Highlight {
	t.Helper()
	content := createArticle(t, e)
	h, err := e.highlightSvc.Create(context.Background(), service.CreateHighlightInput{
		ContentID:    content.ID,
		SelectedText: "a passage",
		Position:     json.RawMessage(`{"start_offset":0,"end_offset":9}`),
	})
	require.NoError(t, err)
	return h
}

func TestCommentCreateAssignsSequentialOrder(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	h := createHighlight(t, e)

	for i := 0; i < 3; i++ {
		cm, err := e.commentSvc.Create(ctx, service.CreateCommentInput{
			HighlightID: h.ID,
			Text:        "comment",
			AuthorType:  model.AuthorTypeUser,
		})
		require.NoError(t, err)
		require.Equal(t, i, cm.Order)
		require.Equal(t, h.ContentID, cm.ContentID)
	}

	thread, err := e.commentSvc.ListByHighlight(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, thread, 3)
	for i, cm := range thread {
		require.Equal(t, i, cm.Order)
	}
}

func TestCommentCreateValidation(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	h := createHighlight(t, e)

	_, err := e.commentSvc.Create(ctx, service.CreateCommentInput{HighlightID: h.ID, Text: "", AuthorType: model.AuthorTypeUser})
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, err = e.commentSvc.Create(ctx, service.CreateCommentInput{HighlightID: h.ID, Text: "x", AuthorType: "robot"})
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, err = e.commentSvc.Create(ctx, service.CreateCommentInput{HighlightID: "missing", Text: "x", AuthorType: model.AuthorTypeUser})
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestCommentCreateParentValidation(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	h1 := createHighlight(t, e)
	h2 := createHighlight(t, e)

	root, err := e.commentSvc.Create(ctx, service.CreateCommentInput{HighlightID: h1.ID, Text: "root", AuthorType: model.AuthorTypeUser})
	require.NoError(t, err)

	reply, err := e.commentSvc.Create(ctx, service.CreateCommentInput{
		HighlightID:     h1.ID,
		Text:            "reply",
		AuthorType:      model.AuthorTypeUser,
		ParentCommentID: root.ID,
	})
	require.NoError(t, err)
	require.Equal(t, root.ID, reply.ParentCommentID)

	_, err = e.commentSvc.Create(ctx, service.CreateCommentInput{
		HighlightID:     h1.ID,
		Text:            "bad parent",
		AuthorType:      model.AuthorTypeUser,
		ParentCommentID: "missing",
	})
	require.ErrorIs(t, err, appErr.ErrInvalid)

	// a parent living on another highlight's thread is rejected
	_, err = e.commentSvc.Create(ctx, service.CreateCommentInput{
		HighlightID:     h2.ID,
		Text:            "cross thread",
		AuthorType:      model.AuthorTypeUser,
		ParentCommentID: root.ID,
	})
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestCommentUpdate(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	h := createHighlight(t, e)

	cm, err := e.commentSvc.Create(ctx, service.CreateCommentInput{HighlightID: h.ID, Text: "draft", AuthorType: model.AuthorTypeUser})
	require.NoError(t, err)

	text := "final"
	updated, err := e.commentSvc.Update(ctx, cm.ID, service.UpdateCommentInput{Text: &text})
	require.NoError(t, err)
	require.Equal(t, "final", updated.Text)
	require.Equal(t, cm.Order, updated.Order)

	_, err = e.commentSvc.Update(ctx, "missing", service.UpdateCommentInput{Text: &text})
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestCommentDeleteLeavesReplies(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	h := createHighlight(t, e)

	root, err := e.commentSvc.Create(ctx, service.CreateCommentInput{HighlightID: h.ID, Text: "root", AuthorType: model.AuthorTypeUser})
	require.NoError(t, err)
	reply, err := e.commentSvc.Create(ctx, service.CreateCommentInput{
		HighlightID:     h.ID,
		Text:            "reply",
		AuthorType:      model.AuthorTypeUser,
		ParentCommentID: root.ID,
	})
	require.NoError(t, err)

	require.NoError(t, e.commentSvc.Delete(ctx, root.ID))

	// the reply survives and keeps its dangling parent reference
	fetched, err := e.commentSvc.Get(ctx, reply.ID)
	require.NoError(t, err)
	require.Equal(t, root.ID, fetched.ParentCommentID)
}
