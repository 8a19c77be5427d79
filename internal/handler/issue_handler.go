package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rishbCLN/civic-issue-reporting/internal/dashboard"
	"github.com/rishbCLN/civic-issue-reporting/internal/issue"
	"github.com/rishbCLN/civic-issue-reporting/internal/status"
)

type IssueHandler struct {
	reader  *issue.Reader
	actions *issue.Actions
}

func NewIssueHandler(reader *issue.Reader, actions *issue.Actions) *IssueHandler {
	return &IssueHandler{
		reader:  reader,
		actions: actions,
	}
}

// ListIssues 获取问题列表
// 查询参数: q 关键词, status 状态过滤, funding=false 跳过资金读取
func (h *IssueHandler) ListIssues(c *gin.Context) {
	withFunding := c.DefaultQuery("funding", "true") != "false"

	issues, err := h.reader.ListIssues(c.Request.Context(), withFunding)
	if err != nil {
		errorJSON(c, issueErrorStatus(err), err)
		return
	}

	filter := dashboard.Filter{
		Query:  c.Query("q"),
		Status: c.Query("status"),
	}
	filtered := dashboard.Apply(issues, filter)

	c.JSON(http.StatusOK, gin.H{
		"issues": filtered,
		"total":  len(filtered),
	})
}

// GetIssue 获取单个问题
func (h *IssueHandler) GetIssue(c *gin.Context) {
	id, err := parseIssueId(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	result, err := h.reader.GetIssue(c.Request.Context(), id, true)
	if err != nil {
		errorJSON(c, issueErrorStatus(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"issue": result})
}

// GetStats 获取各状态的问题统计
func (h *IssueHandler) GetStats(c *gin.Context) {
	issues, err := h.reader.ListIssues(c.Request.Context(), false)
	if err != nil {
		errorJSON(c, issueErrorStatus(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dashboard.Count(issues)})
}

// GetUserFunding 获取某地址对问题的注资总额
func (h *IssueHandler) GetUserFunding(c *gin.Context) {
	id, err := parseIssueId(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	user := c.Query("user")
	if user == "" {
		errorJSON(c, http.StatusBadRequest, errors.New("missing required query parameter: user"))
		return
	}

	amount, err := h.reader.UserFunding(c.Request.Context(), id, user)
	if err != nil {
		errorJSON(c, issueErrorStatus(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issueId": id,
		"user":    user,
		"amount":  amount,
	})
}

// reportIssueRequest 上报请求体
type reportIssueRequest struct {
	Location    string `json:"location"`
	Description string `json:"description"`
	ImageHash   string `json:"imageHash"`
	Reporter    string `json:"reporter"`
}

// ReportIssue 上报新问题
func (h *IssueHandler) ReportIssue(c *gin.Context) {
	var req reportIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	issueId, err := h.actions.Report(c.Request.Context(), issue.ReportRequest{
		Location:    req.Location,
		Description: req.Description,
		ImageHash:   req.ImageHash,
		Reporter:    req.Reporter,
	})
	if err != nil {
		errorJSON(c, issueErrorStatus(err), err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "issue reported",
		"issueId": issueId,
	})
}

// updateIssueStatusRequest 状态变更请求体
type updateIssueStatusRequest struct {
	NewStatus    string `json:"newStatus"`
	AdminAddress string `json:"adminAddress"`
}

// UpdateIssueStatus 管理员更新问题状态
func (h *IssueHandler) UpdateIssueStatus(c *gin.Context) {
	id, err := parseIssueId(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	var req updateIssueStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	newStatus, err := status.Parse(req.NewStatus)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	if err := h.actions.UpdateStatus(c.Request.Context(), id, newStatus, req.AdminAddress); err != nil {
		errorJSON(c, issueErrorStatus(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "status updated",
		"status":  newStatus,
	})
}

// confirmIssueRequest 确认请求体
type confirmIssueRequest struct {
	UserAddress string `json:"userAddress"`
}

// ConfirmIssue 社区确认问题已解决
func (h *IssueHandler) ConfirmIssue(c *gin.Context) {
	id, err := parseIssueId(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	var req confirmIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	if req.UserAddress == "" {
		errorJSON(c, http.StatusBadRequest, errors.New("missing required field: userAddress"))
		return
	}

	count, err := h.actions.Confirm(c.Request.Context(), id, req.UserAddress)
	if err != nil {
		errorJSON(c, issueErrorStatus(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "issue confirmed",
		"confirmationCount": count,
		"verified":          count >= issue.ConfirmationQuorum,
	})
}

// fundIssueRequest 注资请求体
type fundIssueRequest struct {
	Amount      int64  `json:"amount"`
	UserAddress string `json:"userAddress"`
}

// FundIssue 为问题注资
func (h *IssueHandler) FundIssue(c *gin.Context) {
	id, err := parseIssueId(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	var req fundIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	funding, err := h.actions.Fund(c.Request.Context(), id, req.Amount, req.UserAddress)
	if err != nil {
		errorJSON(c, issueErrorStatus(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "issue funded",
		"funding": funding,
	})
}

// withdrawFundsRequest 提款请求体
// available 是调用方最近一次读到的可用资金，用于链前校验
type withdrawFundsRequest struct {
	Amount       int64  `json:"amount"`
	AdminAddress string `json:"adminAddress"`
	Available    int64  `json:"available"`
}

// WithdrawFunds 管理员提取资金
func (h *IssueHandler) WithdrawFunds(c *gin.Context) {
	id, err := parseIssueId(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	var req withdrawFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	funding, err := h.actions.Withdraw(c.Request.Context(), id, req.Amount, req.AdminAddress, req.Available)
	if err != nil {
		errorJSON(c, issueErrorStatus(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "funds withdrawn",
		"funding": funding,
	})
}

// parseIssueId 解析路径中的问题ID
func parseIssueId(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid issue id")
	}
	return id, nil
}
