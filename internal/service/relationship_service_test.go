package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/testutil"
)

func TestFollow_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, true)
	u := testutil.CreateUser(t, s.db, "u")
	a := testutil.CreateUser(t, s.db, "a")

	require.NoError(t, s.relations.Follow(ctx, u.ID, a.ID))
	require.NoError(t, s.relations.Follow(ctx, u.ID, a.ID))

	var cnt int64
	require.NoError(t, s.db.Model(&model.Follow{}).Where("user_id = ? AND author_id = ?", u.ID, a.ID).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)

	ok, err := s.relations.IsFollowing(ctx, u.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := s.relations.FolloweesOf(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, ids)
}

func TestUnfollow_MissingEdgeIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, true)
	u := testutil.CreateUser(t, s.db, "u")
	a := testutil.CreateUser(t, s.db, "a")

	assert.NoError(t, s.relations.Unfollow(ctx, u.ID, a.ID))

	require.NoError(t, s.relations.Follow(ctx, u.ID, a.ID))
	require.NoError(t, s.relations.Unfollow(ctx, u.ID, a.ID))
	ok, err := s.relations.IsFollowing(ctx, u.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollow_UnknownAuthor(t *testing.T) {
	s := newServices(t, true)
	u := testutil.CreateUser(t, s.db, "u")
	err := s.relations.Follow(context.Background(), u.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFollow_SelfToggle(t *testing.T) {
	ctx := context.Background()

	allowed := newServices(t, true)
	u := testutil.CreateUser(t, allowed.db, "u")
	require.NoError(t, allowed.relations.Follow(ctx, u.ID, u.ID))
	ok, err := allowed.relations.IsFollowing(ctx, u.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	denied := newServices(t, false)
	v := testutil.CreateUser(t, denied.db, "v")
	assert.ErrorIs(t, denied.relations.Follow(ctx, v.ID, v.ID), ErrFollowSelf)
}

func TestListFollowingAndFollowers(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, true)
	u := testutil.CreateUser(t, s.db, "u")
	a := testutil.CreateUser(t, s.db, "a")
	b := testutil.CreateUser(t, s.db, "b")

	require.NoError(t, s.relations.Follow(ctx, u.ID, a.ID))
	require.NoError(t, s.relations.Follow(ctx, u.ID, b.ID))
	require.NoError(t, s.relations.Follow(ctx, b.ID, a.ID))

	following, err := s.relations.ListFollowing(ctx, u.ID, 1, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a.ID, b.ID}, following)

	followers, err := s.relations.ListFollowers(ctx, a.ID, 1, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{u.ID, b.ID}, followers)

	page2, err := s.relations.ListFollowers(ctx, a.ID, 2, 1)
	require.NoError(t, err)
	assert.Len(t, page2, 1)
}

func TestListFollowers_HugePage(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, true)
	u := testutil.CreateUser(t, s.db, "u")
	a := testutil.CreateUser(t, s.db, "a")
	require.NoError(t, s.relations.Follow(ctx, u.ID, a.ID))

	followers, err := s.relations.ListFollowers(ctx, a.ID, math.MaxInt, 10)
	require.NoError(t, err)
	assert.Empty(t, followers)

	following, err := s.relations.ListFollowing(ctx, u.ID, math.MaxInt/10+2, 10)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestPageWindow(t *testing.T) {
	offset, limit, ok := pageWindow(0, 0)
	assert.True(t, ok)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 10, limit)

	offset, _, ok = pageWindow(3, 20)
	assert.True(t, ok)
	assert.Equal(t, 40, offset)

	_, _, ok = pageWindow(math.MaxInt, 10)
	assert.False(t, ok)
}
