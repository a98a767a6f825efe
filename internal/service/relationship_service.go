package service

import (
	"context"
	"math"

	"github.com/d60-Lab/yatube/internal/repository"
)

// RelationshipService 关系链服务
type RelationshipService interface {
	Follow(ctx context.Context, userID, authorID int64) error
	Unfollow(ctx context.Context, userID, authorID int64) error
	// FolloweesOf 返回 userID 当前关注的作者集合，读主库，不缓存
	FolloweesOf(ctx context.Context, userID int64) ([]int64, error)
	IsFollowing(ctx context.Context, userID, authorID int64) (bool, error)
	ListFollowing(ctx context.Context, userID int64, page, pageSize int) ([]int64, error)
	ListFollowers(ctx context.Context, authorID int64, page, pageSize int) ([]int64, error)
}

type relationshipService struct {
	followRepo      repository.FollowRepository
	userRepo        repository.UserRepository
	allowSelfFollow bool
}

func NewRelationshipService(followRepo repository.FollowRepository, userRepo repository.UserRepository, allowSelfFollow bool) RelationshipService {
	return &relationshipService{followRepo: followRepo, userRepo: userRepo, allowSelfFollow: allowSelfFollow}
}

func (s *relationshipService) Follow(ctx context.Context, userID, authorID int64) error {
	if userID == authorID && !s.allowSelfFollow {
		return ErrFollowSelf
	}
	if _, err := s.userRepo.GetByID(ctx, authorID); err != nil {
		return notFound(err, "author")
	}
	return s.followRepo.Create(ctx, userID, authorID)
}

func (s *relationshipService) Unfollow(ctx context.Context, userID, authorID int64) error {
	return s.followRepo.Delete(ctx, userID, authorID)
}

func (s *relationshipService) FolloweesOf(ctx context.Context, userID int64) ([]int64, error) {
	return s.followRepo.FolloweeIDs(ctx, userID)
}

func (s *relationshipService) IsFollowing(ctx context.Context, userID, authorID int64) (bool, error) {
	return s.followRepo.Exists(ctx, userID, authorID)
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID int64, page, pageSize int) ([]int64, error) {
	offset, limit, ok := pageWindow(page, pageSize)
	if !ok {
		return []int64{}, nil
	}
	items, err := s.followRepo.ListFollowings(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	res := make([]int64, len(items))
	for i, it := range items {
		res[i] = it.AuthorID
	}
	return res, nil
}

func (s *relationshipService) ListFollowers(ctx context.Context, authorID int64, page, pageSize int) ([]int64, error) {
	offset, limit, ok := pageWindow(page, pageSize)
	if !ok {
		return []int64{}, nil
	}
	items, err := s.followRepo.ListFollowers(ctx, authorID, offset, limit)
	if err != nil {
		return nil, err
	}
	res := make([]int64, len(items))
	for i, it := range items {
		res[i] = it.UserID
	}
	return res, nil
}

// pageWindow 计算 offset/limit；offset 溢出时 ok 为 false，调用方返回空页
func pageWindow(page, pageSize int) (offset, limit int, ok bool) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if page-1 > math.MaxInt/pageSize {
		return 0, 0, false
	}
	return (page - 1) * pageSize, pageSize, true
}
