package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rishbCLN/civic-issue-reporting/internal/logger"
	"github.com/rishbCLN/civic-issue-reporting/internal/mirror"
	"github.com/rishbCLN/civic-issue-reporting/internal/status"
)

// MirrorHandler 元数据镜像接口
// 这些接口只写存储介质，不触达链
type MirrorHandler struct {
	mirror *mirror.Service
}

func NewMirrorHandler(svc *mirror.Service) *MirrorHandler {
	return &MirrorHandler{mirror: svc}
}

// UploadToIPFS 上传问题图片和元数据
// multipart表单: file、location、description、reporter
func (h *MirrorHandler) UploadToIPFS(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, errors.New("missing file"))
		return
	}

	location := c.PostForm("location")
	description := c.PostForm("description")
	reporter := c.PostForm("reporter")
	if location == "" || description == "" || reporter == "" {
		errorJSON(c, http.StatusBadRequest, errors.New("missing required fields: location, description, reporter"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		errorJSON(c, http.StatusBadRequest, errors.New("failed to open uploaded file"))
		return
	}
	defer file.Close()

	uploader := h.mirror.Uploader()

	// 先传图片，再传引用图片哈希的元数据文档
	imageHash, err := uploader.PinFile(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		logger.Error("Failed to pin image: %v", err)
		errorJSON(c, http.StatusInternalServerError, errors.New("failed to upload image"))
		return
	}

	metadata := mirror.IssueMetadata{
		Location:    location,
		Description: description,
		Reporter:    reporter,
		ImageHash:   imageHash,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	metadataHash, err := uploader.PinJSON(c.Request.Context(), metadata)
	if err != nil {
		logger.Error("Failed to pin issue metadata: %v", err)
		errorJSON(c, http.StatusInternalServerError, errors.New("failed to upload metadata"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imageHash":    imageHash,
		"metadataHash": metadataHash,
		"imageUrl":     uploader.GatewayURL(imageHash),
		"metadataUrl":  uploader.GatewayURL(metadataHash),
	})
}

// updateStatusRequest 状态快照请求体
type updateStatusRequest struct {
	IssueId      uint64 `json:"issueId"`
	ImageHash    string `json:"imageHash"`
	NewStatus    string `json:"newStatus"`
	AdminAddress string `json:"adminAddress"`
}

// UpdateIssueStatus 上传状态变更快照
func (h *MirrorHandler) UpdateIssueStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	if req.IssueId == 0 || req.NewStatus == "" || req.AdminAddress == "" {
		errorJSON(c, http.StatusBadRequest, errors.New("missing required fields: issueId, newStatus, adminAddress"))
		return
	}
	if !status.IssueStatus(req.NewStatus).Valid() {
		errorJSON(c, http.StatusBadRequest, errors.New("unknown status: "+req.NewStatus))
		return
	}

	snapshot := mirror.StatusSnapshot{
		IssueId:   req.IssueId,
		ImageHash: req.ImageHash,
		Status:    req.NewStatus,
		UpdatedBy: req.AdminAddress,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Type:      mirror.KindStatusUpdate,
	}

	cid, err := h.mirror.PinSnapshot(c.Request.Context(), req.IssueId, mirror.KindStatusUpdate, snapshot)
	if err != nil {
		logger.Error("Failed to pin status snapshot for issue %d: %v", req.IssueId, err)
		errorJSON(c, http.StatusInternalServerError, errors.New("failed to upload status metadata"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metadataCid":    cid,
		"statusMetadata": snapshot,
	})
}

// updateFundingRequest 资金快照请求体
type updateFundingRequest struct {
	IssueId      uint64 `json:"issueId"`
	Action       string `json:"action"`
	Amount       int64  `json:"amount"`
	UserAddress  string `json:"userAddress"`
	TotalFunding int64  `json:"totalFunding"`
	FundsUsed    int64  `json:"fundsUsed"`
	Available    int64  `json:"available"`
}

// UpdateIssueFunding 上传资金变更快照
func (h *MirrorHandler) UpdateIssueFunding(c *gin.Context) {
	var req updateFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	if req.IssueId == 0 || req.Action == "" || req.UserAddress == "" || req.Amount <= 0 {
		errorJSON(c, http.StatusBadRequest, errors.New("missing required fields: issueId, action, amount, userAddress"))
		return
	}
	if req.Action != "fund" && req.Action != "withdraw" {
		errorJSON(c, http.StatusBadRequest, errors.New("action must be fund or withdraw"))
		return
	}

	snapshot := mirror.FundingSnapshot{
		IssueId:      req.IssueId,
		Action:       req.Action,
		Amount:       req.Amount,
		UserAddress:  req.UserAddress,
		TotalFunding: req.TotalFunding,
		FundsUsed:    req.FundsUsed,
		Available:    req.Available,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Type:         mirror.KindFundingUpdate,
	}

	cid, err := h.mirror.PinSnapshot(c.Request.Context(), req.IssueId, mirror.KindFundingUpdate, snapshot)
	if err != nil {
		logger.Error("Failed to pin funding snapshot for issue %d: %v", req.IssueId, err)
		errorJSON(c, http.StatusInternalServerError, errors.New("failed to upload funding metadata"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metadataCid":     cid,
		"fundingMetadata": snapshot,
	})
}
