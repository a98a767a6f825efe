package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/response"
)

type groupFeedView struct {
	Group GroupRef  `json:"group"`
	Feed  *FeedView `json:"feed"`
}

type profileView struct {
	Author    UserView  `json:"author"`
	PostCount int64     `json:"post_count"`
	Following bool      `json:"following"`
	Feed      *FeedView `json:"feed"`
}

// renderGlobal 生成写入页面缓存的完整响应体
func (h *Handler) renderGlobal(ctx context.Context, p *service.FeedPage) ([]byte, error) {
	view, err := h.feedView(ctx, p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(response.OK(view))
}

// Index 全站信息流
// @Summary 全站信息流（页面缓存）
// @Description 响应体整体缓存在单一 key 下，TTL 内所有页码返回同一内容
// @Tags 信息流
// @Produce json
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=FeedView}
// @Failure 500 {object} response.Response
// @Router / [get]
func (h *Handler) Index(c *gin.Context) {
	body, err := h.feedService.RenderGlobal(c.Request.Context(), pageParam(c), h.renderGlobal)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// GroupFeed 分组信息流
// @Summary 分组信息流
// @Tags 信息流
// @Produce json
// @Param slug path string true "分组 slug"
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=groupFeedView}
// @Failure 404 {object} response.Response
// @Router /group/{slug}/ [get]
func (h *Handler) GroupFeed(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.feedService.Compose(ctx, service.GroupFeed{Slug: c.Param("slug")}, pageParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	feed, err := h.feedView(ctx, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, groupFeedView{
		Group: GroupRef{Slug: p.Group.Slug, Title: p.Group.Title},
		Feed:  feed,
	})
}

// Profile 作者主页
// @Summary 作者主页及其帖子
// @Tags 信息流
// @Produce json
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=profileView}
// @Failure 404 {object} response.Response
// @Router /profile/{username}/ [get]
func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.feedService.Compose(ctx, service.ProfileFeed{Username: c.Param("username")}, pageParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	feed, err := h.feedView(ctx, p)
	if err != nil {
		h.fail(c, err)
		return
	}

	view := profileView{Author: userView(p.Author), PostCount: p.Total, Feed: feed}
	if viewer, ok := middleware.UserID(c); ok {
		view.Following, err = h.relService.IsFollowing(ctx, viewer, p.Author.ID)
		if err != nil {
			h.fail(c, err)
			return
		}
	}
	response.Success(c, view)
}

// FollowFeed 关注的作者的信息流
// @Summary 关注信息流
// @Tags 信息流
// @Produce json
// @Security Bearer
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=FeedView}
// @Failure 401 {object} response.Response
// @Router /follow/ [get]
func (h *Handler) FollowFeed(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.feedService.Compose(ctx, service.FollowFeed{UserID: currentUser(c)}, pageParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	feed, err := h.feedView(ctx, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, feed)
}
