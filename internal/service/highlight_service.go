package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/marginote/marginote/internal/model"
	appErr "github.com/marginote/marginote/internal/pkg/errors"
	"github.com/marginote/marginote/internal/pkg/timeutil"
	"github.com/marginote/marginote/internal/repo"
)

type HighlightService struct {
	conn       *sql.DB
	highlights *repo.HighlightRepo
	contents   *repo.ContentRepo
}

func NewHighlightService(conn *sql.DB, highlights *repo.HighlightRepo, contents *repo.ContentRepo) *HighlightService {
	return &HighlightService{conn: conn, highlights: highlights, contents: contents}
}

type CreateHighlightInput struct {
	ContentID    string          `json:"content_id"`
	SelectedText string          `json:"selected_text"`
	Context      string          `json:"context"`
	Position     json.RawMessage `json:"position"`
	Color        string          `json:"color"`
	Note         string          `json:"note"`
}

func (s *HighlightService) Create(ctx context.Context, in CreateHighlightInput) (*model.Highlight, error) {
	if in.ContentID == "" {
		return nil, fmt.Errorf("%w: content_id is required", appErr.ErrInvalid)
	}
	if in.SelectedText == "" {
		return nil, fmt.Errorf("%w: selected_text is required", appErr.ErrInvalid)
	}
	if len(in.Position) == 0 {
		return nil, fmt.Errorf("%w: position is required", appErr.ErrInvalid)
	}
	content, err := s.contents.GetByID(ctx, in.ContentID)
	if err != nil {
		return nil, err
	}
	// the position variant must match the owning content's type
	if _, err := model.DecodePosition(in.Position, content.Type); err != nil {
		return nil, err
	}
	color := in.Color
	if color == "" {
		color = model.DefaultHighlightColor
	}
	now := timeutil.NowUnix()
	h := &model.Highlight{
		ID:           newID(),
		ContentID:    in.ContentID,
		SelectedText: in.SelectedText,
		Context:      in.Context,
		Position:     in.Position,
		Color:        color,
		Note:         in.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.highlights.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *HighlightService) Get(ctx context.Context, id string) (*model.Highlight, error) {
	return s.highlights.GetByID(ctx, id)
}

func (s *HighlightService) ListByContent(ctx context.Context, contentID string) ([]model.Highlight, error) {
	if contentID == "" {
		return nil, fmt.Errorf("%w: content_id is required", appErr.ErrInvalid)
	}
	return s.highlights.ListByContent(ctx, contentID)
}

type UpdateHighlightInput struct {
	SelectedText *string         `json:"selected_text"`
	Context      *string         `json:"context"`
	Position     json.RawMessage `json:"position"`
	Color        *string         `json:"color"`
	Note         *string         `json:"note"`
}

func (s *HighlightService) Update(ctx context.Context, id string, in UpdateHighlightInput) (*model.Highlight, error) {
	h, err := s.highlights.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.SelectedText != nil {
		h.SelectedText = *in.SelectedText
	}
	if in.Context != nil {
		h.Context = *in.Context
	}
	if in.Position != nil {
		content, err := s.contents.GetByID(ctx, h.ContentID)
		if err != nil {
			return nil, err
		}
		if _, err := model.DecodePosition(in.Position, content.Type); err != nil {
			return nil, err
		}
		h.Position = in.Position
	}
	if in.Color != nil {
		h.Color = *in.Color
	}
	if in.Note != nil {
		h.Note = *in.Note
	}
	h.UpdatedAt = timeutil.NowUnix()
	if err := s.highlights.Update(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Delete removes the highlight and its comment thread in one transaction.
func (s *HighlightService) Delete(ctx context.Context, id string) error {
	return repo.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		if err := repo.NewCommentRepo(tx).DeleteByHighlight(ctx, id); err != nil {
			return err
		}
		return repo.NewHighlightRepo(tx).Delete(ctx, id)
	})
}
