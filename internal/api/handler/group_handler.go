package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/pkg/response"
)

type groupRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Slug        string `json:"slug" binding:"required,max=100,slug"`
	Description string `json:"description"`
}

// ListGroups 分组列表
// @Summary 分组列表
// @Tags 分组
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Group}
// @Router /groups/ [get]
func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.groupService.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, groups)
}

// CreateGroup 创建分组
// @Summary 创建分组
// @Tags 分组
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body groupRequest true "分组信息"
// @Success 201 {object} response.Response{data=model.Group}
// @Failure 400 {object} response.Response
// @Router /groups/ [post]
func (h *Handler) CreateGroup(c *gin.Context) {
	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	g, err := h.groupService.Create(c.Request.Context(), req.Title, req.Slug, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, g)
}
