package service

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/testutil"
)

type services struct {
	db        *gorm.DB
	cache     *cache.Memory
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	posts     PostService
	groups    GroupService
	comments  CommentService
	users     UserService
	relations RelationshipService
	feed      FeedService
}

func newServices(t *testing.T, allowSelfFollow bool) *services {
	t.Helper()
	db := testutil.NewDB(t)

	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	pc := cache.NewMemory()
	relations := NewRelationshipService(followRepo, userRepo, allowSelfFollow)
	return &services{
		db:        db,
		cache:     pc,
		postRepo:  postRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		posts:     NewPostService(postRepo, groupRepo, commentRepo),
		groups:    NewGroupService(groupRepo),
		comments:  NewCommentService(commentRepo, postRepo),
		users:     NewUserService(userRepo, "test-secret", time.Hour),
		relations: relations,
		feed:      NewFeedService(postRepo, groupRepo, userRepo, relations, pc, 20*time.Second, 10),
	}
}
