package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/api"
	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/database"
	"github.com/d60-Lab/yatube/pkg/logger"
	"github.com/d60-Lab/yatube/pkg/tracing"
)

// @title Yatube API
// @version 1.0
// @description 帖子、分组、关注与信息流
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	gin.SetMode(cfg.Server.Mode)

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			SampleRate:       cfg.Sentry.SampleRate,
			AttachStacktrace: true,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	stopTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	pageCache, err := cache.New(ctx, cfg.Cache, cfg.Redis)
	if err != nil {
		return err
	}
	stopSweeper := func(context.Context) error { return nil }
	if sw, ok := pageCache.(cache.Sweeper); ok && cfg.Cache.SweepSpec != "" {
		if stopSweeper, err = cache.StartSweeper(sw, cfg.Cache.SweepSpec); err != nil {
			return err
		}
	}

	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	users := service.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.Expire)
	relations := service.NewRelationshipService(followRepo, userRepo, cfg.Follow.AllowSelfFollow)
	h := handler.NewHandler(handler.Services{
		Feed:      service.NewFeedService(postRepo, groupRepo, userRepo, relations, pageCache, cfg.Cache.TTL, cfg.Feed.PageSize),
		Posts:     service.NewPostService(postRepo, groupRepo, commentRepo),
		Groups:    service.NewGroupService(groupRepo),
		Comments:  service.NewCommentService(commentRepo, postRepo),
		Users:     users,
		Relations: relations,
		PageCache: pageCache,
	})
	router := api.NewRouter(h, users, api.Options{
		ServiceName: cfg.Tracing.ServiceName,
		Sentry:      cfg.Sentry.DSN != "",
		Tracing:     cfg.Tracing.Enabled,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("server started", zap.String("addr", srv.Addr), zap.String("cache", cfg.Cache.Driver))
	serveErr := serve(srv, quit)
	if serveErr != nil {
		logger.Error("server failed", zap.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := stopSweeper(shutdownCtx); err != nil {
		logger.Warn("stop sweeper", zap.Error(err))
	}
	if err := pageCache.Close(); err != nil {
		logger.Warn("close page cache", zap.Error(err))
	}
	if err := stopTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	return serveErr
}

// serve blocks until a signal arrives on quit or the listener fails. A
// listener failure is returned; a signal returns nil.
func serve(srv *http.Server, quit <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		return nil
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}
}
