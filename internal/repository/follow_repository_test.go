package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/testutil"
)

func TestFollowRepository_CreateIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "u")
	a := testutil.CreateUser(t, db, "a")

	require.NoError(t, repo.Create(ctx, u.ID, a.ID))
	require.NoError(t, repo.Create(ctx, u.ID, a.ID))

	var cnt int64
	require.NoError(t, db.Model(&model.Follow{}).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)

	ok, err := repo.Exists(ctx, u.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Exists(ctx, a.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowRepository_DeleteAndFollowees(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "u")
	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")

	ids, err := repo.FolloweeIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	require.NoError(t, repo.Create(ctx, u.ID, a.ID))
	require.NoError(t, repo.Create(ctx, u.ID, b.ID))
	require.NoError(t, repo.Delete(ctx, u.ID, a.ID))
	require.NoError(t, repo.Delete(ctx, u.ID, a.ID))

	ids, err = repo.FolloweeIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, ids)

	followers, err := repo.ListFollowers(ctx, b.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, u.ID, followers[0].UserID)
}
