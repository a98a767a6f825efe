package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/pkg/database"
)

type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id int64) (*model.Group, error)
	GetBySlug(ctx context.Context, slug string) (*model.Group, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Group, error)
	List(ctx context.Context) ([]*model.Group, error)
}

type groupRepository struct{ db *gorm.DB }

func NewGroupRepository(db *gorm.DB) GroupRepository { return &groupRepository{db: db} }

func (r *groupRepository) Create(ctx context.Context, group *model.Group) error {
	return database.Primary(ctx, r.db).Create(group).Error
}

func (r *groupRepository) GetByID(ctx context.Context, id int64) (*model.Group, error) {
	var g model.Group
	if err := database.Primary(ctx, r.db).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepository) GetBySlug(ctx context.Context, slug string) (*model.Group, error) {
	var g model.Group
	if err := database.Primary(ctx, r.db).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.Group, error) {
	res := []*model.Group{}
	if len(ids) == 0 {
		return res, nil
	}
	err := database.Replica(ctx, r.db).Where("id IN ?", ids).Find(&res).Error
	return res, err
}

func (r *groupRepository) List(ctx context.Context) ([]*model.Group, error) {
	res := []*model.Group{}
	err := database.Replica(ctx, r.db).Order("title ASC, id ASC").Find(&res).Error
	return res, err
}
