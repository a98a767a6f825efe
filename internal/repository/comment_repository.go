package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/pkg/database"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListByPost(ctx context.Context, postID int64) ([]*model.Comment, error)
	CountByPost(ctx context.Context, postID int64) (int64, error)
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	return database.Primary(ctx, r.db).Create(comment).Error
}

// ListByPost 最新评论在前
func (r *commentRepository) ListByPost(ctx context.Context, postID int64) ([]*model.Comment, error) {
	res := []*model.Comment{}
	err := database.Primary(ctx, r.db).
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&res).Error
	return res, err
}

func (r *commentRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var cnt int64
	err := database.Primary(ctx, r.db).Model(&model.Comment{}).Where("post_id = ?", postID).Count(&cnt).Error
	return cnt, err
}
