package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误码
const (
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeFileNotFound       = "ERR_FILE_NOT_FOUND"
	ErrCodeInvalidLimit       = "ERR_INVALID_LIMIT"
	ErrCodeHistoryFailed      = "ERR_HISTORY_FAILED"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// APIError 统一的错误响应；Details 只用于说明哪个参数有问题，不携带内部错误
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func abortWithError(c *gin.Context, status int, apiErr APIError) {
	c.AbortWithStatusJSON(status, apiErr)
}

// NotFound 路由或文件不存在
func NotFound(c *gin.Context, code string, message string) {
	abortWithError(c, http.StatusNotFound, APIError{Code: code, Message: message})
}

// InternalError 查询失败，消息固定，原始错误只写日志
func InternalError(c *gin.Context, code string, message string) {
	abortWithError(c, http.StatusInternalServerError, APIError{Code: code, Message: message})
}

// ServiceUnavailable 依赖（数据库）不可用
func ServiceUnavailable(c *gin.Context, message string) {
	abortWithError(c, http.StatusServiceUnavailable, APIError{Code: ErrCodeServiceUnavailable, Message: message})
}

// InvalidQuery 查询参数无法解析
func InvalidQuery(c *gin.Context, param string, value string) {
	abortWithError(c, http.StatusBadRequest, APIError{
		Code:    ErrCodeInvalidLimit,
		Message: "invalid " + param,
		Details: gin.H{"param": param, "value": value},
	})
}
