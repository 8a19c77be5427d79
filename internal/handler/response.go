package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rishbCLN/civic-issue-reporting/internal/chain"
	"github.com/rishbCLN/civic-issue-reporting/internal/issue"
	"github.com/rishbCLN/civic-issue-reporting/internal/status"
)

// errorJSON 统一错误响应体
func errorJSON(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}

// issueErrorStatus 将业务错误映射为HTTP状态码
func issueErrorStatus(err error) int {
	switch {
	case errors.Is(err, issue.ErrMissingField),
		errors.Is(err, issue.ErrInvalidAmount),
		errors.Is(err, issue.ErrInsufficientFunds),
		errors.Is(err, issue.ErrNotResolved),
		errors.Is(err, issue.ErrAlreadyConfirmed),
		errors.Is(err, issue.ErrAdminConfirm),
		errors.Is(err, issue.ErrTerminalStatus),
		errors.Is(err, status.ErrUnknownStatus):
		return http.StatusBadRequest
	case errors.Is(err, issue.ErrNotAdmin):
		return http.StatusForbidden
	case issue.IsUserRejected(err):
		// 用户在钱包中取消，不算服务端失败
		return http.StatusBadRequest
	case errors.Is(err, chain.ErrNoContractCode):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
