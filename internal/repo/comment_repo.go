package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"github.com/marginote/marginote/internal/model"
	appErr "github.com/marginote/marginote/internal/pkg/errors"
)

// The thread position column is named thread_order because ORDER is a
// reserved word.
var commentColumns = []string{
	"id", "highlight_id", "content_id", "text", "author_type", "llm_metadata",
	"parent_comment_id", "thread_order", "created_at",
}

type CommentRepo struct {
	q Queryer
}

func NewCommentRepo(q Queryer) *CommentRepo {
	return &CommentRepo{q: q}
}

func (r *CommentRepo) Create(ctx context.Context, cm *model.Comment) error {
	llmMetadata := ""
	if cm.LLMMetadata != nil {
		encoded, err := json.Marshal(cm.LLMMetadata)
		if err != nil {
			return err
		}
		llmMetadata = string(encoded)
	}
	data := map[string]interface{}{
		"id":                cm.ID,
		"highlight_id":      cm.HighlightID,
		"content_id":        cm.ContentID,
		"text":              cm.Text,
		"author_type":       cm.AuthorType,
		"llm_metadata":      llmMetadata,
		"parent_comment_id": cm.ParentCommentID,
		"thread_order":      cm.Order,
		"created_at":        cm.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("comments", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *CommentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("comments", where, commentColumns)
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
	return scanComment(rows)
}

func (r *CommentRepo) ListByHighlight(ctx context.Context, highlightID string) ([]model.Comment, error) {
	where := map[string]interface{}{
		"highlight_id": highlightID,
		"_orderby":     "thread_order asc",
	}
	sqlStr, args, err := builder.BuildSelect("comments", where, commentColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Comment, 0)
	for rows.Next() {
		cm, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *cm)
	}
	return items, rows.Err()
}

// MaxOrder returns the highest thread position for a highlight, or -1 when
// the thread is empty. Call it inside the same transaction as Create so the
// dense-ordering invariant holds under concurrent writers.
func (r *CommentRepo) MaxOrder(ctx context.Context, highlightID string) (int, error) {
	row := r.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(thread_order), -1) FROM comments WHERE highlight_id = ?`, highlightID)
	var max int
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

func (r *CommentRepo) Update(ctx context.Context, cm *model.Comment) error {
	llmMetadata := ""
	if cm.LLMMetadata != nil {
		encoded, err := json.Marshal(cm.LLMMetadata)
		if err != nil {
			return err
		}
		llmMetadata = string(encoded)
	}
	where := map[string]interface{}{"id": cm.ID}
	update := map[string]interface{}{
		"text":         cm.Text,
		"llm_metadata": llmMetadata,
	}
	sqlStr, args, err := builder.BuildUpdate("comments", where, update)
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

func (r *CommentRepo) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
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

func (r *CommentRepo) DeleteByHighlight(ctx context.Context, highlightID string) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM comments WHERE highlight_id = ?", highlightID)
	return err
}

func (r *CommentRepo) DeleteByContent(ctx context.Context, contentID string) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM comments WHERE content_id = ?", contentID)
	return err
}

// DeleteOrphans removes comments whose owning highlight no longer exists.
func (r *CommentRepo) DeleteOrphans(ctx context.Context) (int64, error) {
	result, err := r.q.ExecContext(ctx, "DELETE FROM comments WHERE highlight_id NOT IN (SELECT id FROM highlights)")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanComment(rows *sql.Rows) (*model.Comment, error) {
	var cm model.Comment
	var llmMetadata string
	if err := rows.Scan(&cm.ID, &cm.HighlightID, &cm.ContentID, &cm.Text, &cm.AuthorType,
		&llmMetadata, &cm.ParentCommentID, &cm.Order, &cm.CreatedAt); err != nil {
		return nil, err
	}
	if llmMetadata != "" {
		var meta model.LLMMetadata
		if err := json.Unmarshal([]byte(llmMetadata), &meta); err != nil {
			return nil, err
		}
		cm.LLMMetadata = &meta
	}
	return &cm, nil
}
