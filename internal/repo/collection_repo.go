package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/marginote/marginote/internal/model"
	appErr "github.com/marginote/marginote/internal/pkg/errors"
)

var collectionColumns = []string{
	"id", "name", "description", "color", "icon", "created_at", "updated_at",
}

type CollectionRepo struct {
	q Queryer
}

func NewCollectionRepo(q Queryer) *CollectionRepo {
	return &CollectionRepo{q: q}
}

func (r *CollectionRepo) Create(ctx context.Context, col *model.Collection) error {
	data := map[string]interface{}{
		"id":          col.ID,
		"name":        col.Name,
		"description": col.Description,
		"color":       col.Color,
		"icon":        col.Icon,
		"created_at":  col.CreatedAt,
		"updated_at":  col.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("collections", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *CollectionRepo) GetByID(ctx context.Context, id string) (*model.Collection, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("collections", where, collectionColumns)
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
	return scanCollection(rows)
}

func (r *CollectionRepo) List(ctx context.Context) ([]model.Collection, error) {
	where := map[string]interface{}{"_orderby": "created_at asc"}
	sqlStr, args, err := builder.BuildSelect("collections", where, collectionColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Collection, 0)
	for rows.Next() {
		col, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *col)
	}
	return items, rows.Err()
}

func (r *CollectionRepo) Update(ctx context.Context, col *model.Collection) error {
	where := map[string]interface{}{"id": col.ID}
	update := map[string]interface{}{
		"name":        col.Name,
		"description": col.Description,
		"color":       col.Color,
		"icon":        col.Icon,
		"updated_at":  col.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildUpdate("collections", where, update)
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

func (r *CollectionRepo) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM collections WHERE id = ?", id)
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

func (r *CollectionRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT id FROM collections")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanCollection(rows *sql.Rows) (*model.Collection, error) {
	var col model.Collection
	if err := rows.Scan(&col.ID, &col.Name, &col.Description, &col.Color, &col.Icon,
		&col.CreatedAt, &col.UpdatedAt); err != nil {
		return nil, err
	}
	return &col, nil
}
