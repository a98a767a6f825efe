package api

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/d60-Lab/yatube/docs"
	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/api/middleware"
)

// Options 路由可选组件
type Options struct {
	ServiceName string
	Sentry      bool
	Tracing     bool
}

// NewRouter 注册全部路由
func NewRouter(h *handler.Handler, tokens middleware.TokenParser, opts Options) *gin.Engine {
	handler.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if opts.Tracing {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	if opts.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.Logger())
	r.Use(middleware.Prometheus(opts.ServiceName))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := middleware.RequireAuth(tokens)
	optional := middleware.OptionalAuth(tokens)

	// 信息流
	r.GET("/", h.Index)
	r.GET("/group/:slug/", optional, h.GroupFeed)
	r.GET("/profile/:username/", optional, h.Profile)
	r.GET("/follow/", auth, h.FollowFeed)

	// 关系链
	r.POST("/profile/:username/follow/", auth, h.Follow)
	r.POST("/profile/:username/unfollow/", auth, h.Unfollow)
	r.GET("/profile/:username/following/", h.ListFollowing)
	r.GET("/profile/:username/followers/", h.ListFollowers)

	// 帖子
	r.POST("/create/", auth, h.CreatePost)
	posts := r.Group("/posts/:post_id")
	{
		posts.GET("/", optional, h.PostDetail)
		posts.POST("/edit/", auth, h.EditPost)
		posts.POST("/delete/", auth, h.DeletePost)
		posts.POST("/comment/", auth, h.AddComment)
	}

	r.GET("/groups/", h.ListGroups)
	r.POST("/groups/", auth, h.CreateGroup)

	r.POST("/auth/signup/", h.Signup)
	r.POST("/auth/login/", h.Login)

	r.POST("/admin/cache/invalidate", auth, middleware.StaffOnly(), h.InvalidateCache)

	return r
}
