package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/pkg/response"
)

type relationListView struct {
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	List     []string `json:"list"`
}

// Follow 关注作者，重复关注为空操作
// @Summary 关注作者
// @Tags 关系链
// @Produce json
// @Security Bearer
// @Param username path string true "作者用户名"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /profile/{username}/follow/ [post]
func (h *Handler) Follow(c *gin.Context) {
	ctx := c.Request.Context()
	author, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.relService.Follow(ctx, currentUser(c), author.ID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"author": author.Username, "following": true})
}

// Unfollow 取消关注，未关注时为空操作
// @Summary 取消关注
// @Tags 关系链
// @Produce json
// @Security Bearer
// @Param username path string true "作者用户名"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /profile/{username}/unfollow/ [post]
func (h *Handler) Unfollow(c *gin.Context) {
	ctx := c.Request.Context()
	author, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.relService.Unfollow(ctx, currentUser(c), author.ID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"author": author.Username, "following": false})
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Produce json
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=relationListView}
// @Failure 404 {object} response.Response
// @Router /profile/{username}/following/ [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	h.listRelations(c, h.relService.ListFollowing)
}

// ListFollowers 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Produce json
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=relationListView}
// @Failure 404 {object} response.Response
// @Router /profile/{username}/followers/ [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	h.listRelations(c, h.relService.ListFollowers)
}

type relationLister func(ctx context.Context, userID int64, page, pageSize int) ([]int64, error)

func (h *Handler) listRelations(c *gin.Context, list relationLister) {
	ctx := c.Request.Context()
	u, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	page := pageParam(c)
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	ids, err := list(ctx, u.ID, page, pageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	users, err := h.userService.GetByIDs(ctx, ids)
	if err != nil {
		h.fail(c, err)
		return
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if f, ok := users[id]; ok {
			names = append(names, f.Username)
		}
	}
	response.Success(c, relationListView{Page: page, PageSize: pageSize, List: names})
}
