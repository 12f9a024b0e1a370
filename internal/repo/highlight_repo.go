package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"github.com/marginote/marginote/internal/model"
	appErr "github.com/marginote/marginote/internal/pkg/errors"
)

var highlightColumns = []string{
	"id", "content_id", "selected_text", "context", "position", "color", "note",
	"created_at", "updated_at",
}

type HighlightRepo struct {
	q Queryer
}

func NewHighlightRepo(q Queryer) *HighlightRepo {
	return &HighlightRepo{q: q}
}

func (r *HighlightRepo) Create(ctx context.Context, h *model.Highlight) error {
	data := map[string]interface{}{
		"id":            h.ID,
		"content_id":    h.ContentID,
		"selected_text": h.SelectedText,
		"context":       h.Context,
		"position":      string(h.Position),
		"color":         h.Color,
		"note":          h.Note,
		"created_at":    h.CreatedAt,
		"updated_at":    h.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("highlights", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *HighlightRepo) GetByID(ctx context.Context, id string) (*model.Highlight, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("highlights", where, highlightColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanHighlight(rows)
}

func (r *HighlightRepo) ListByContent(ctx context.Context, contentID string) ([]model.Highlight, error) {
	where := map[string]interface{}{
		"content_id": contentID,
		"_orderby":   "created_at asc",
	}
	sqlStr, args, err := builder.BuildSelect("highlights", where, highlightColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Highlight, 0)
	for rows.Next() {
		h, err := scanHighlight(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *h)
	}
	return items, rows.Err()
}

func (r *HighlightRepo) Update(ctx context.Context, h *model.Highlight) error {
	where := map[string]interface{}{"id": h.ID}
	update := map[string]interface{}{
		"selected_text": h.SelectedText,
		"context":       h.Context,
		"position":      string(h.Position),
		"color":         h.Color,
		"note":          h.Note,
		"updated_at":    h.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildUpdate("highlights", where, update)
	if err != nil {
		return err
	}
	result, err := r.q.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *HighlightRepo) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM highlights WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *HighlightRepo) DeleteByContent(ctx context.Context, contentID string) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM highlights WHERE content_id = ?", contentID)
	return err
}

// DeleteOrphans removes highlights whose owning content no longer exists.
func (r *HighlightRepo) DeleteOrphans(ctx context.Context) (int64, error) {
	result, err := r.q.ExecContext(ctx, "DELETE FROM highlights WHERE content_id NOT IN (SELECT id FROM content)")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanHighlight(rows *sql.Rows) (*model.Highlight, error) {
	var h model.Highlight
	var position string
	if err := rows.Scan(&h.ID, &h.ContentID, &h.SelectedText, &h.Context, &position,
		&h.Color, &h.Note, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	h.Position = json.RawMessage(position)
	return &h, nil
}
