package service

import (
	"context"
	"time"

	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
)

// IndexPageKey is the single cache slot for the global feed. It does not vary
// by page number or viewer.
const IndexPageKey = "index_page"

// FeedMode 选择信息流：GlobalFeed、GroupFeed、ProfileFeed 或 FollowFeed
type FeedMode interface {
	feedMode()
}

type GlobalFeed struct{}

type GroupFeed struct {
	Slug string
}

type ProfileFeed struct {
	Username string
}

// FollowFeed 为 UserID 关注的作者的帖子
type FollowFeed struct {
	UserID int64
}

func (GlobalFeed) feedMode()  {}
func (GroupFeed) feedMode()   {}
func (ProfileFeed) feedMode() {}
func (FollowFeed) feedMode()  {}

// FeedPage 一页信息流。Group 和 Author 仅在对应模式下填充。
type FeedPage struct {
	Posts       []*model.Post
	Number      int
	PageSize    int
	Total       int64
	NumPages    int
	HasNext     bool
	HasPrevious bool

	Group  *model.Group
	Author *model.User
}

// Renderer turns a composed page into the bytes stored in the page cache.
type Renderer func(ctx context.Context, page *FeedPage) ([]byte, error)

type FeedService interface {
	Compose(ctx context.Context, mode FeedMode, page int) (*FeedPage, error)
	// RenderGlobal composes and renders the global feed through the page
	// cache. While the cached entry is fresh, every page number gets the
	// same bytes.
	RenderGlobal(ctx context.Context, page int, render Renderer) ([]byte, error)
	PageSize() int
}

type feedService struct {
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	relations RelationshipService
	cache     cache.PageCache
	cacheTTL  time.Duration
	pageSize  int
}

// NewFeedService 创建信息流服务。pageSize 是所有模式共用的唯一分页配置。
func NewFeedService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	relations RelationshipService,
	pageCache cache.PageCache,
	cacheTTL time.Duration,
	pageSize int,
) FeedService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &feedService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		relations: relations,
		cache:     pageCache,
		cacheTTL:  cacheTTL,
		pageSize:  pageSize,
	}
}

func (s *feedService) PageSize() int { return s.pageSize }

func (s *feedService) Compose(ctx context.Context, mode FeedMode, page int) (*FeedPage, error) {
	res := &FeedPage{}
	var filter repository.PostFilter

	switch m := mode.(type) {
	case GlobalFeed:
		filter = repository.AllPosts()
	case GroupFeed:
		g, err := s.groupRepo.GetBySlug(ctx, m.Slug)
		if err != nil {
			return nil, notFound(err, "group "+m.Slug)
		}
		res.Group = g
		filter = repository.ByGroup(g.ID)
	case ProfileFeed:
		u, err := s.userRepo.GetByUsername(ctx, m.Username)
		if err != nil {
			return nil, notFound(err, "user "+m.Username)
		}
		res.Author = u
		filter = repository.ByAuthor(u.ID)
	case FollowFeed:
		ids, err := s.relations.FolloweesOf(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		filter = repository.ByAuthorSet(ids)
	default:
		return nil, invalid("mode", "unknown feed mode")
	}

	if err := s.paginate(ctx, filter, page, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *feedService) paginate(ctx context.Context, filter repository.PostFilter, page int, res *FeedPage) error {
	if page < 1 {
		page = 1
	}
	total, err := s.postRepo.Count(ctx, filter)
	if err != nil {
		return err
	}
	numPages := int((total + int64(s.pageSize) - 1) / int64(s.pageSize))
	if numPages < 1 {
		numPages = 1
	}

	// 超出末页直接返回空页，不计算 offset
	posts := []*model.Post{}
	if page <= numPages {
		posts, err = s.postRepo.List(ctx, filter, (page-1)*s.pageSize, s.pageSize)
		if err != nil {
			return err
		}
	}
	res.Posts = posts
	res.Number = page
	res.PageSize = s.pageSize
	res.Total = total
	res.NumPages = numPages
	res.HasNext = page < numPages
	res.HasPrevious = page > 1
	return nil
}

func (s *feedService) RenderGlobal(ctx context.Context, page int, render Renderer) ([]byte, error) {
	return s.cache.GetOrCompute(ctx, IndexPageKey, s.cacheTTL, func(ctx context.Context) ([]byte, error) {
		p, err := s.Compose(ctx, GlobalFeed{}, page)
		if err != nil {
			return nil, err
		}
		return render(ctx, p)
	})
}
