package handler

import (
	"errors"
	"strconv"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/logger"
	"github.com/d60-Lab/yatube/pkg/response"
)

// Handler HTTP 处理器集合
type Handler struct {
	feedService    service.FeedService
	postService    service.PostService
	groupService   service.GroupService
	commentService service.CommentService
	userService    service.UserService
	relService     service.RelationshipService
	pageCache      cache.PageCache
}

// Services 组装 Handler 所需的服务
type Services struct {
	Feed      service.FeedService
	Posts     service.PostService
	Groups    service.GroupService
	Comments  service.CommentService
	Users     service.UserService
	Relations service.RelationshipService
	PageCache cache.PageCache
}

func NewHandler(s Services) *Handler {
	return &Handler{
		feedService:    s.Feed,
		postService:    s.Posts,
		groupService:   s.Groups,
		commentService: s.Comments,
		userService:    s.Users,
		relService:     s.Relations,
		pageCache:      s.PageCache,
	}
}

// fail maps a service error onto the response envelope. Unexpected errors
// are logged and reported to Sentry.
func (h *Handler) fail(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		response.BadRequest(c, ve.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrFollowSelf):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	default:
		_ = c.Error(err)
		logger.Error("request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("request_id", c.GetString("request_id"))
				hub.CaptureException(err)
			})
		}
		response.InternalError(c, err)
	}
}

// pageParam 解析 ?page=，非法值按第一页处理
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func postIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(c, "post not found")
		return 0, false
	}
	return id, true
}

// currentUser 返回已登录用户 ID，路由层已保证 RequireAuth
func currentUser(c *gin.Context) int64 {
	id, _ := middleware.UserID(c)
	return id
}
