package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/pkg/response"
)

// InvalidateCache 清空页面缓存；带 key 参数时只清该 key
// @Summary 清空页面缓存
// @Tags 管理
// @Produce json
// @Security Bearer
// @Param key query string false "缓存 key，如 index_page"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/cache/invalidate [post]
func (h *Handler) InvalidateCache(c *gin.Context) {
	ctx := c.Request.Context()
	var err error
	if key := c.Query("key"); key != "" {
		err = h.pageCache.Invalidate(ctx, key)
	} else {
		err = h.pageCache.InvalidateAll(ctx)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}
