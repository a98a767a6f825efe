package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	CodeOK           = 0
	CodeBadRequest   = 40000
	CodeUnauthorized = 40100
	CodeForbidden    = 40300
	CodeNotFound     = 40400
	CodeInternal     = 50000
)

// OK builds the success envelope without writing it, for callers that
// render the body themselves (cached pages).
func OK(data interface{}) Response {
	return Response{Code: CodeOK, Message: "success", Data: data}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, OK(data))
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: CodeOK, Message: "created", Data: data})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: CodeBadRequest, Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{Code: CodeUnauthorized, Message: msg})
}

func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, Response{Code: CodeForbidden, Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Code: CodeNotFound, Message: msg})
}

func InternalError(c *gin.Context, err error) {
	msg := "internal server error"
	if gin.Mode() == gin.DebugMode && err != nil {
		msg = err.Error()
	}
	c.JSON(http.StatusInternalServerError, Response{Code: CodeInternal, Message: msg})
}
