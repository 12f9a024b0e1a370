package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/marginote/marginote/internal/model"
	appErr "github.com/marginote/marginote/internal/pkg/errors"
	"github.com/marginote/marginote/internal/pkg/logutil"
	"github.com/marginote/marginote/internal/pkg/timeutil"
	"github.com/marginote/marginote/internal/repo"
)

type CollectionService struct {
	conn        *sql.DB
	collections *repo.CollectionRepo
	contents    *repo.ContentRepo
	members     *repo.CollectionMemberRepo
}

func NewCollectionService(conn *sql.DB, collections *repo.CollectionRepo, contents *repo.ContentRepo, members *repo.CollectionMemberRepo) *CollectionService {
	return &CollectionService{conn: conn, collections: collections, contents: contents, members: members}
}

type CreateCollectionInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

func (s *CollectionService) Create(ctx context.Context, in CreateCollectionInput) (*model.Collection, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", appErr.ErrInvalid)
	}
	now := timeutil.NowUnix()
	col := &model.Collection{
		ID:          newID(),
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		Icon:        in.Icon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.collections.Create(ctx, col); err != nil {
		return nil, err
	}
	return col, nil
}

func (s *CollectionService) List(ctx context.Context) ([]model.Collection, error) {
	return s.collections.List(ctx)
}

// GetWithContent returns the collection row plus its member content, resolved
// through the membership table.
func (s *CollectionService) GetWithContent(ctx context.Context, id string) (*model.CollectionWithContent, error) {
	col, err := s.collections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.contents.ListByCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].ID)
	}
	byContent, err := s.members.MapByContent(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if got, ok := byContent[items[i].ID]; ok {
			items[i].CollectionIDs = got
		}
	}
	return &model.CollectionWithContent{Collection: *col, Content: items}, nil
}

type UpdateCollectionInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
}

func (s *CollectionService) Update(ctx context.Context, id string, in UpdateCollectionInput) (*model.Collection, error) {
	col, err := s.collections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		col.Name = *in.Name
	}
	if in.Description != nil {
		col.Description = *in.Description
	}
	if in.Color != nil {
		col.Color = *in.Color
	}
	if in.Icon != nil {
		col.Icon = *in.Icon
	}
	col.UpdatedAt = timeutil.NowUnix()
	if err := s.collections.Update(ctx, col); err != nil {
		return nil, err
	}
	return col, nil
}

// Delete removes the collection and its membership rows in one transaction,
// so a failure partway leaves no content still referencing a deleted
// collection.
func (s *CollectionService) Delete(ctx context.Context, id string) error {
	err := repo.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		if err := repo.NewCollectionMemberRepo(tx).DeleteByCollection(ctx, id); err != nil {
			return err
		}
		return repo.NewCollectionRepo(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("collection deleted", zap.String("collection_id", id))
	return nil
}
