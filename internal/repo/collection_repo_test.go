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

func TestCollectionRepoCRUD(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	collections := repo.NewCollectionRepo(conn)
	ctx := context.Background()

	col := &model.Collection{ID: "col-1", Name: "Reading", Description: "to read", Color: "#00f", Icon: "book", CreatedAt: 1000, UpdatedAt: 1000}
	require.NoError(t, collections.Create(ctx, col))

	fetched, err := collections.GetByID(ctx, "col-1")
	require.NoError(t, err)
	require.Equal(t, "Reading", fetched.Name)
	require.Equal(t, "book", fetched.Icon)

	fetched.Name = "Read later"
	fetched.UpdatedAt = 2000
	require.NoError(t, collections.Update(ctx, fetched))
	fetched, err = collections.GetByID(ctx, "col-1")
	require.NoError(t, err)
	require.Equal(t, "Read later", fetched.Name)

	require.NoError(t, collections.Delete(ctx, "col-1"))
	_, err = collections.GetByID(ctx, "col-1")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestCollectionRepoListIDs(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	collections := repo.NewCollectionRepo(conn)
	ctx := context.Background()

	ids, err := collections.ListIDs(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)

	require.NoError(t, collections.Create(ctx, &model.Collection{ID: "col-1", Name: "a", CreatedAt: 1, UpdatedAt: 1}))
	require.NoError(t, collections.Create(ctx, &model.Collection{ID: "col-2", Name: "b", CreatedAt: 2, UpdatedAt: 2}))

	ids, err = collections.ListIDs(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"col-1", "col-2"}, ids)
}
