package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
)

// SlugPattern is the URL-safe alphabet group slugs are drawn from.
var SlugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// GroupService 分组管理。分组只增不删。
type GroupService interface {
	Create(ctx context.Context, title, slug, description string) (*model.Group, error)
	GetBySlug(ctx context.Context, slug string) (*model.Group, error)
	GetByID(ctx context.Context, id int64) (*model.Group, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Group, error)
	List(ctx context.Context) ([]*model.Group, error)
}

type groupService struct {
	groupRepo repository.GroupRepository
}

func NewGroupService(groupRepo repository.GroupRepository) GroupService {
	return &groupService{groupRepo: groupRepo}
}

func (s *groupService) Create(ctx context.Context, title, slug, description string) (*model.Group, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalid("title", "must not be blank")
	}
	if utf8.RuneCountInString(title) > 200 {
		return nil, invalid("title", "at most 200 characters")
	}
	if !SlugPattern.MatchString(slug) {
		return nil, invalid("slug", "only letters, digits, '-' and '_' are allowed")
	}
	if _, err := s.groupRepo.GetBySlug(ctx, slug); err == nil {
		return nil, invalid("slug", "already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	g := &model.Group{Title: title, Slug: slug, Description: description}
	if err := s.groupRepo.Create(ctx, g); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid("slug", "already taken")
		}
		return nil, err
	}
	return g, nil
}

func (s *groupService) GetBySlug(ctx context.Context, slug string) (*model.Group, error) {
	g, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "group "+slug)
	}
	return g, nil
}

func (s *groupService) GetByID(ctx context.Context, id int64) (*model.Group, error) {
	g, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "group")
	}
	return g, nil
}

// GetByIDs 批量查询分组；已删除的分组不在结果中
func (s *groupService) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Group, error) {
	groups, err := s.groupRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	res := make(map[int64]*model.Group, len(groups))
	for _, g := range groups {
		res[g.ID] = g
	}
	return res, nil
}

func (s *groupService) List(ctx context.Context) ([]*model.Group, error) {
	return s.groupRepo.List(ctx)
}
