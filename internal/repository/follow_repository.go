package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/pkg/database"
)

type FollowRepository interface {
	Create(ctx context.Context, userID, authorID int64) error
	Delete(ctx context.Context, userID, authorID int64) error
	Exists(ctx context.Context, userID, authorID int64) (bool, error)
	FolloweeIDs(ctx context.Context, userID int64) ([]int64, error)
	ListFollowings(ctx context.Context, userID int64, offset, limit int) ([]*model.Follow, error)
	ListFollowers(ctx context.Context, authorID int64, offset, limit int) ([]*model.Follow, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, userID, authorID int64) error {
	f := &model.Follow{UserID: userID, AuthorID: authorID}
	// 幂等：重复关注不报错
	return database.Primary(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error
}

func (r *followRepository) Delete(ctx context.Context, userID, authorID int64) error {
	return database.Primary(ctx, r.db).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&model.Follow{}).Error
}

func (r *followRepository) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	var cnt int64
	if err := database.Primary(ctx, r.db).
		Model(&model.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// FolloweeIDs 返回 userID 关注的全部作者，始终读主库
func (r *followRepository) FolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	err := database.Primary(ctx, r.db).
		Model(&model.Follow{}).
		Where("user_id = ?", userID).
		Pluck("author_id", &ids).Error
	return ids, err
}

func (r *followRepository) ListFollowings(ctx context.Context, userID int64, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := database.Replica(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *followRepository) ListFollowers(ctx context.Context, authorID int64, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := database.Replica(ctx, r.db).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
