package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/pkg/database"
)

// FilterKind 帖子过滤方式
type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterGroup
	FilterAuthor
	FilterAuthorSet
)

// PostFilter selects the posts a range scan returns. Only the field that
// matches Kind is read.
type PostFilter struct {
	Kind      FilterKind
	GroupID   int64
	AuthorID  int64
	AuthorIDs []int64
}

func AllPosts() PostFilter               { return PostFilter{Kind: FilterAll} }
func ByGroup(groupID int64) PostFilter   { return PostFilter{Kind: FilterGroup, GroupID: groupID} }
func ByAuthor(authorID int64) PostFilter { return PostFilter{Kind: FilterAuthor, AuthorID: authorID} }
func ByAuthorSet(ids []int64) PostFilter { return PostFilter{Kind: FilterAuthorSet, AuthorIDs: ids} }

// matchesNothing reports whether the filter can be answered without a query.
func (f PostFilter) matchesNothing() bool {
	return f.Kind == FilterAuthorSet && len(f.AuthorIDs) == 0
}

func (f PostFilter) apply(q *gorm.DB) *gorm.DB {
	switch f.Kind {
	case FilterGroup:
		return q.Where("group_id = ?", f.GroupID)
	case FilterAuthor:
		return q.Where("author_id = ?", f.AuthorID)
	case FilterAuthorSet:
		return q.Where("author_id IN ?", f.AuthorIDs)
	default:
		return q
	}
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter PostFilter, offset, limit int) ([]*model.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	return database.Primary(ctx, r.db).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	if err := database.Primary(ctx, r.db).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Update 只更新正文、分组和图片，作者不可变
func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	res := database.Primary(ctx, r.db).
		Model(&model.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"text":       post.Text,
			"group_id":   post.GroupID,
			"image":      post.Image,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 在同一事务内删除评论和帖子
func (r *postRepository) Delete(ctx context.Context, id int64) error {
	return database.Primary(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List 按 created_at DESC, id DESC 返回一页帖子
func (r *postRepository) List(ctx context.Context, filter PostFilter, offset, limit int) ([]*model.Post, error) {
	posts := []*model.Post{}
	if filter.matchesNothing() || limit <= 0 {
		return posts, nil
	}
	err := filter.apply(database.Primary(ctx, r.db).Model(&model.Post{})).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	if filter.matchesNothing() {
		return 0, nil
	}
	var cnt int64
	err := filter.apply(database.Primary(ctx, r.db).Model(&model.Post{})).Count(&cnt).Error
	return cnt, err
}
