package repo

import (
	"context"
	"strings"

	"github.com/didi/gendry/builder"
)

// CollectionMemberRepo owns the collection<->content association table. The
// API still presents membership as a collection_ids list on each content
// record; services assemble that view from here.
type CollectionMemberRepo struct {
	q Queryer
}

func NewCollectionMemberRepo(q Queryer) *CollectionMemberRepo {
	return &CollectionMemberRepo{q: q}
}

func (r *CollectionMemberRepo) Add(ctx context.Context, collectionID, contentID string, now int64) error {
	data := map[string]interface{}{
		"collection_id": collectionID,
		"content_id":    contentID,
		"created_at":    now,
	}
	sqlStr, args, err := builder.BuildInsert("collection_members", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, sqlStr, args...)
	return err
}

// Replace rewrites a content record's memberships to exactly the given set.
// Call it inside the same transaction as the content write.
func (r *CollectionMemberRepo) Replace(ctx context.Context, contentID string, collectionIDs []string, now int64) error {
	if err := r.DeleteByContent(ctx, contentID); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(collectionIDs))
	for _, collectionID := range collectionIDs {
		if collectionID == "" {
			continue
		}
		if _, ok := seen[collectionID]; ok {
			continue
		}
		seen[collectionID] = struct{}{}
		if err := r.Add(ctx, collectionID, contentID, now); err != nil {
			return err
		}
	}
	return nil
}

func (r *CollectionMemberRepo) ListByContent(ctx context.Context, contentID string) ([]string, error) {
	where := map[string]interface{}{
		"content_id": contentID,
		"_orderby":   "created_at asc",
	}
	sqlStr, args, err := builder.BuildSelect("collection_members", where, []string{"collection_id"})
	if err != nil {
		return nil, err
	}
	return r.queryIDs(ctx, sqlStr, args...)
}

func (r *CollectionMemberRepo) ListByCollection(ctx context.Context, collectionID string) ([]string, error) {
	where := map[string]interface{}{"collection_id": collectionID}
	sqlStr, args, err := builder.BuildSelect("collection_members", where, []string{"content_id"})
	if err != nil {
		return nil, err
	}
	return r.queryIDs(ctx, sqlStr, args...)
}

// MapByContent returns collection ids grouped by content id for a batch of
// content records, so list endpoints avoid a query per row.
func (r *CollectionMemberRepo) MapByContent(ctx context.Context, contentIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(contentIDs))
	if len(contentIDs) == 0 {
		return result, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(contentIDs)), ",")
	args := make([]interface{}, 0, len(contentIDs))
	for _, id := range contentIDs {
		args = append(args, id)
	}
	rows, err := r.q.QueryContext(ctx,
		"SELECT content_id, collection_id FROM collection_members WHERE content_id IN ("+placeholders+") ORDER BY created_at ASC",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var contentID, collectionID string
		if err := rows.Scan(&contentID, &collectionID); err != nil {
			return nil, err
		}
		result[contentID] = append(result[contentID], collectionID)
	}
	return result, rows.Err()
}

func (r *CollectionMemberRepo) DeleteByContent(ctx context.Context, contentID string) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM collection_members WHERE content_id = ?", contentID)
	return err
}

func (r *CollectionMemberRepo) DeleteByCollection(ctx context.Context, collectionID string) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM collection_members WHERE collection_id = ?", collectionID)
	return err
}

// DeleteOrphans removes membership rows whose collection or content is gone.
func (r *CollectionMemberRepo) DeleteOrphans(ctx context.Context) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		`DELETE FROM collection_members
		 WHERE collection_id NOT IN (SELECT id FROM collections)
		    OR content_id NOT IN (SELECT id FROM content)`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *CollectionMemberRepo) queryIDs(ctx context.Context, sqlStr string, args ...interface{}) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, sqlStr, args...)
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
