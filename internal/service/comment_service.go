package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marginote/marginote/internal/model"
	appErr "github.com/marginote/marginote/internal/pkg/errors"
	"github.com/marginote/marginote/internal/pkg/timeutil"
	"github.com/marginote/marginote/internal/repo"
)

type CommentService struct {
	conn       *sql.DB
	comments   *repo.CommentRepo
	highlights *repo.HighlightRepo
}

func NewCommentService(conn *sql.DB, comments *repo.CommentRepo, highlights *repo.HighlightRepo) *CommentService {
	return &CommentService{conn: conn, comments: comments, highlights: highlights}
}

type CreateCommentInput struct {
	HighlightID     string             `json:"highlight_id"`
	Text            string             `json:"text"`
	AuthorType      string             `json:"author_type"`
	LLMMetadata     *model.LLMMetadata `json:"llm_metadata"`
	ParentCommentID string             `json:"parent_comment_id"`
}

// Create appends to the highlight's thread. The order value is assigned as
// max+1 inside the insert transaction, so concurrent creators cannot mint
// duplicates; the unique (highlight_id, thread_order) index backstops it.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*model.Comment, error) {
	if in.HighlightID == "" || in.Text == "" {
		return nil, fmt.Errorf("%w: highlight_id and text are required", appErr.ErrInvalid)
	}
	if !model.IsValidAuthorType(in.AuthorType) {
		return nil, fmt.Errorf("%w: author_type must be user or llm", appErr.ErrInvalid)
	}
	highlight, err := s.highlights.GetByID(ctx, in.HighlightID)
	if err != nil {
		return nil, err
	}
	if in.ParentCommentID != "" {
		parent, err := s.comments.GetByID(ctx, in.ParentCommentID)
		if err != nil {
			return nil, fmt.Errorf("%w: parent comment does not exist", appErr.ErrInvalid)
		}
		if parent.HighlightID != in.HighlightID {
			return nil, fmt.Errorf("%w: parent comment belongs to another highlight", appErr.ErrInvalid)
		}
	}

	cm := &model.Comment{
		ID:              newID(),
		HighlightID:     in.HighlightID,
		ContentID:       highlight.ContentID,
		Text:            in.Text,
		AuthorType:      in.AuthorType,
		LLMMetadata:     in.LLMMetadata,
		ParentCommentID: in.ParentCommentID,
		CreatedAt:       timeutil.NowUnix(),
	}
	err = repo.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		comments := repo.NewCommentRepo(tx)
		maxOrder, err := comments.MaxOrder(ctx, in.HighlightID)
		if err != nil {
			return err
		}
		cm.Order = maxOrder + 1
		return comments.Create(ctx, cm)
	})
	if err != nil {
		return nil, err
	}
	return cm, nil
}

func (s *CommentService) Get(ctx context.Context, id string) (*model.Comment, error) {
	return s.comments.GetByID(ctx, id)
}

func (s *CommentService) ListByHighlight(ctx context.Context, highlightID string) ([]model.Comment, error) {
	if highlightID == "" {
		return nil, fmt.Errorf("%w: highlight_id is required", appErr.ErrInvalid)
	}
	return s.comments.ListByHighlight(ctx, highlightID)
}

type UpdateCommentInput struct {
	Text        *string            `json:"text"`
	LLMMetadata *model.LLMMetadata `json:"llm_metadata"`
}

func (s *CommentService) Update(ctx context.Context, id string, in UpdateCommentInput) (*model.Comment, error) {
	cm, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Text != nil {
		cm.Text = *in.Text
	}
	if in.LLMMetadata != nil {
		cm.LLMMetadata = in.LLMMetadata
	}
	if err := s.comments.Update(ctx, cm); err != nil {
		return nil, err
	}
	return cm, nil
}

// Delete removes a single comment. Replies are not re-parented or deleted:
// children keep their parent_comment_id as a soft thread break, matching the
// thread model.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	return s.comments.Delete(ctx, id)
}
