package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"github.com/marginote/marginote/internal/model"
	appErr "github.com/marginote/marginote/internal/pkg/errors"
)

var contentColumns = []string{
	"id", "type", "title", "url", "author", "saved_at", "last_accessed_at",
	"metadata", "content", "html_content", "tags", "progress",
}

type ContentRepo struct {
	q Queryer
}

func NewContentRepo(q Queryer) *ContentRepo {
	return &ContentRepo{q: q}
}

func (r *ContentRepo) Create(ctx context.Context, c *model.Content) error {
	metadata := c.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}
	tags, err := json.Marshal(emptyIfNil(c.Tags))
	if err != nil {
		return err
	}
	progress, err := json.Marshal(c.Progress)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"id":               c.ID,
		"type":             c.Type,
		"title":            c.Title,
		"url":              c.URL,
		"author":           c.Author,
		"saved_at":         c.SavedAt,
		"last_accessed_at": c.LastAccessedAt,
		"metadata":         string(metadata),
		"content":          c.Content,
		"html_content":     c.HTMLContent,
		"tags":             string(tags),
		"progress":         string(progress),
	}
	sqlStr, args, err := builder.BuildInsert("content", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ContentRepo) GetByID(ctx context.Context, id string) (*model.Content, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("content", where, contentColumns)
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
	return scanContent(rows)
}

func (r *ContentRepo) List(ctx context.Context) ([]model.Content, error) {
	where := map[string]interface{}{"_orderby": "saved_at desc"}
	sqlStr, args, err := builder.BuildSelect("content", where, contentColumns)
	if err != nil {
		return nil, err
	}
	return r.queryContent(ctx, sqlStr, args...)
}

// ListByCollection returns every content row associated with the collection
// through the membership table.
func (r *ContentRepo) ListByCollection(ctx context.Context, collectionID string) ([]model.Content, error) {
	where := map[string]interface{}{
		"_custom_member": builder.Custom("id IN (SELECT content_id FROM collection_members WHERE collection_id = ?)", collectionID),
		"_orderby":       "saved_at desc",
	}
	sqlStr, args, err := builder.BuildSelect("content", where, contentColumns)
	if err != nil {
		return nil, err
	}
	return r.queryContent(ctx, sqlStr, args...)
}

func (r *ContentRepo) Update(ctx context.Context, c *model.Content) error {
	tags, err := json.Marshal(emptyIfNil(c.Tags))
	if err != nil {
		return err
	}
	progress, err := json.Marshal(c.Progress)
	if err != nil {
		return err
	}
	where := map[string]interface{}{"id": c.ID}
	update := map[string]interface{}{
		"type":         c.Type,
		"title":        c.Title,
		"url":          c.URL,
		"author":       c.Author,
		"metadata":     string(c.Metadata),
		"content":      c.Content,
		"html_content": c.HTMLContent,
		"tags":         string(tags),
		"progress":     string(progress),
	}
	sqlStr, args, err := builder.BuildUpdate("content", where, update)
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

func (r *ContentRepo) UpdateLastAccessed(ctx context.Context, id string, ts int64) error {
	where := map[string]interface{}{"id": id}
	update := map[string]interface{}{"last_accessed_at": ts}
	sqlStr, args, err := builder.BuildUpdate("content", where, update)
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ContentRepo) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM content WHERE id = ?", id)
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

func (r *ContentRepo) queryContent(ctx context.Context, sqlStr string, args ...interface{}) ([]model.Content, error) {
	rows, err := r.q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Content, 0)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func scanContent(rows *sql.Rows) (*model.Content, error) {
	var c model.Content
	var metadata, tags, progress string
	if err := rows.Scan(&c.ID, &c.Type, &c.Title, &c.URL, &c.Author, &c.SavedAt, &c.LastAccessedAt,
		&metadata, &c.Content, &c.HTMLContent, &tags, &progress); err != nil {
		return nil, err
	}
	c.Metadata = json.RawMessage(metadata)
	if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
		return nil, err
	}
	c.CollectionIDs = []string{}
	if err := json.Unmarshal([]byte(progress), &c.Progress); err != nil {
		return nil, err
	}
	return &c, nil
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
