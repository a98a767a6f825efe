package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/response"
)

type postRequest struct {
	Text    string  `json:"text" binding:"required"`
	GroupID *int64  `json:"group_id"`
	Image   *string `json:"image" binding:"omitempty,max=255"`
}

func (r postRequest) input() service.PostInput {
	return service.PostInput{Text: r.Text, GroupID: r.GroupID, Image: r.Image}
}

type postDetailView struct {
	Post        PostView      `json:"post"`
	Comments    []CommentView `json:"comments"`
	AuthorPosts int64         `json:"author_posts"`
}

// CreatePost 发帖
// @Summary 发帖
// @Tags 帖子
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body postRequest true "帖子内容"
// @Success 201 {object} response.Response{data=PostView}
// @Failure 400 {object} response.Response
// @Router /create/ [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	post, err := h.postService.Create(ctx, currentUser(c), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	views, err := h.postViews(ctx, []*model.Post{post})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, views[0])
}

// PostDetail 帖子详情
// @Summary 帖子详情（含评论）
// @Tags 帖子
// @Produce json
// @Param post_id path int true "帖子ID"
// @Success 200 {object} response.Response{data=postDetailView}
// @Failure 404 {object} response.Response
// @Router /posts/{post_id}/ [get]
func (h *Handler) PostDetail(c *gin.Context) {
	id, ok := postIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	d, err := h.postService.Detail(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	views, err := h.postViews(ctx, []*model.Post{d.Post})
	if err != nil {
		h.fail(c, err)
		return
	}

	commenterIDs := make([]int64, len(d.Comments))
	for i, cm := range d.Comments {
		commenterIDs[i] = cm.AuthorID
	}
	commenters, err := h.userService.GetByIDs(ctx, commenterIDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	comments := make([]CommentView, 0, len(d.Comments))
	for _, cm := range d.Comments {
		v := CommentView{ID: cm.ID, Text: cm.Text, CreatedAt: cm.CreatedAt}
		if u, ok := commenters[cm.AuthorID]; ok {
			v.Author = u.Username
		}
		comments = append(comments, v)
	}

	response.Success(c, postDetailView{Post: views[0], Comments: comments, AuthorPosts: d.AuthorPosts})
}

// EditPost 编辑帖子，仅作者本人
// @Summary 编辑帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Security Bearer
// @Param post_id path int true "帖子ID"
// @Param request body postRequest true "帖子内容"
// @Success 200 {object} response.Response{data=PostView}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{post_id}/edit/ [post]
func (h *Handler) EditPost(c *gin.Context) {
	id, ok := postIDParam(c)
	if !ok {
		return
	}
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	post, err := h.postService.Update(ctx, currentUser(c), id, req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	views, err := h.postViews(ctx, []*model.Post{post})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, views[0])
}

// DeletePost 删除帖子及其评论
// @Summary 删除帖子
// @Tags 帖子
// @Security Bearer
// @Param post_id path int true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{post_id}/delete/ [post]
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := postIDParam(c)
	if !ok {
		return
	}
	if err := h.postService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddComment 评论
// @Summary 发表评论
// @Tags 帖子
// @Accept json
// @Produce json
// @Security Bearer
// @Param post_id path int true "帖子ID"
// @Param request body commentRequest true "评论内容"
// @Success 201 {object} response.Response{data=CommentView}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{post_id}/comment/ [post]
func (h *Handler) AddComment(c *gin.Context) {
	id, ok := postIDParam(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	uid := currentUser(c)
	cm, err := h.commentService.Add(ctx, uid, id, req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	author, err := h.userService.GetByID(ctx, uid)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, CommentView{ID: cm.ID, Author: author.Username, Text: cm.Text, CreatedAt: cm.CreatedAt})
}
