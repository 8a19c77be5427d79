package issue

import (
	"context"
	"fmt"
	"time"

	"github.com/rishbCLN/civic-issue-reporting/internal/contract"
	"github.com/rishbCLN/civic-issue-reporting/internal/logger"
	"github.com/rishbCLN/civic-issue-reporting/internal/mirror"
	"github.com/rishbCLN/civic-issue-reporting/internal/status"
)

// Snapshotter 镜像快照提交接口
// 提交是尽力而为的，失败不会影响链上操作
type Snapshotter interface {
	SubmitSnapshot(issueId uint64, kind string, payload interface{})
}

// AdminChecker 管理员白名单检查
type AdminChecker func(address string) bool

// Actions 问题状态变更操作
// 每个操作都是一次合约调用，等待交易上链后重新读取权威数据，
// 最后尽力写一份镜像快照
type Actions struct {
	gateway contract.Gateway
	mirror  Snapshotter
	isAdmin AdminChecker
	tracker *ConfirmationTracker
}

// NewActions 创建问题操作器
func NewActions(gateway contract.Gateway, snapshotter Snapshotter, isAdmin AdminChecker, onVerified VerifiedCallback) *Actions {
	return &Actions{
		gateway: gateway,
		mirror:  snapshotter,
		isAdmin: isAdmin,
		tracker: NewConfirmationTracker(onVerified),
	}
}

// ReportRequest 问题上报请求
type ReportRequest struct {
	Location    string
	Description string
	ImageHash   string
	Reporter    string
}

// Report 上报问题
// 必填字段为空时在任何网络调用前本地拒绝
func (a *Actions) Report(ctx context.Context, req ReportRequest) (uint64, error) {
	if req.Location == "" {
		return 0, fmt.Errorf("%w: location", ErrMissingField)
	}
	if req.Description == "" {
		return 0, fmt.Errorf("%w: description", ErrMissingField)
	}
	if req.ImageHash == "" {
		return 0, fmt.Errorf("%w: imageHash", ErrMissingField)
	}

	issueId, err := a.gateway.ReportIssue(ctx, req.Location, req.Description, req.ImageHash)
	if err != nil {
		logger.Error("Failed to report issue: %v", err)
		return 0, err
	}

	a.mirror.SubmitSnapshot(issueId, mirror.KindIssueMetadata, mirror.IssueMetadata{
		Location:    req.Location,
		Description: req.Description,
		Reporter:    req.Reporter,
		ImageHash:   req.ImageHash,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})

	return issueId, nil
}

// UpdateStatus 更新问题状态
// 只有白名单地址可以发起，非管理员请求不会触达链
func (a *Actions) UpdateStatus(ctx context.Context, issueId uint64, newStatus status.IssueStatus, adminAddress string) error {
	if !a.isAdmin(adminAddress) {
		return fmt.Errorf("%w: %s", ErrNotAdmin, adminAddress)
	}
	if !newStatus.Valid() {
		return fmt.Errorf("%w: %q", status.ErrUnknownStatus, newStatus)
	}

	// Confirmed 之后不再提供状态变更，软性保护，合约仍是权威
	current, err := a.gateway.GetIssue(ctx, issueId)
	if err != nil {
		return fmt.Errorf("failed to read issue %d: %w", issueId, err)
	}
	if status.FromOrdinal(current.Status) == status.StatusConfirmed {
		return fmt.Errorf("%w: issue %d is confirmed", ErrTerminalStatus, issueId)
	}

	if err := a.gateway.UpdateIssueStatus(ctx, issueId, newStatus.Ordinal()); err != nil {
		logger.Error("Failed to update status of issue %d: %v", issueId, err)
		return err
	}

	a.mirror.SubmitSnapshot(issueId, mirror.KindStatusUpdate, mirror.StatusSnapshot{
		IssueId:   issueId,
		ImageHash: current.ImageHash,
		Status:    string(newStatus),
		UpdatedBy: adminAddress,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Type:      mirror.KindStatusUpdate,
	})

	return nil
}

// Confirm 社区确认问题已解决
// 仅限非管理员、Resolved 状态、每个地址一次
// 返回确认后的最新计数
func (a *Actions) Confirm(ctx context.Context, issueId uint64, userAddress string) (int, error) {
	if a.isAdmin(userAddress) {
		return 0, ErrAdminConfirm
	}

	current, err := a.gateway.GetIssue(ctx, issueId)
	if err != nil {
		return 0, fmt.Errorf("failed to read issue %d: %w", issueId, err)
	}
	if status.FromOrdinal(current.Status) != status.StatusResolved {
		return 0, fmt.Errorf("%w: issue %d", ErrNotResolved, issueId)
	}

	confirmed, err := a.gateway.HasUserConfirmed(ctx, issueId, userAddress)
	if err != nil {
		return 0, fmt.Errorf("failed to check confirmation of issue %d: %w", issueId, err)
	}
	if confirmed {
		return 0, fmt.Errorf("%w: issue %d", ErrAlreadyConfirmed, issueId)
	}

	if err := a.gateway.ConfirmIssue(ctx, issueId); err != nil {
		logger.Error("Failed to confirm issue %d: %v", issueId, err)
		return 0, err
	}

	// 重新读取权威计数，不在本地累加
	count, err := a.gateway.ConfirmationCount(ctx, issueId)
	if err != nil {
		return 0, fmt.Errorf("failed to read confirmation count of issue %d: %w", issueId, err)
	}

	a.tracker.Record(issueId, count)
	return count, nil
}

// Fund 为问题注资
// 链上交易成功后重新读取权威资金数据再写镜像
func (a *Actions) Fund(ctx context.Context, issueId uint64, amount int64, userAddress string) (*contract.Funding, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	if err := a.gateway.FundIssue(ctx, issueId, amount); err != nil {
		logger.Error("Failed to fund issue %d: %v", issueId, err)
		return nil, err
	}

	return a.mirrorFunding(ctx, issueId, "fund", amount, userAddress)
}

// Withdraw 提取资金
// 金额必须不超过调用方已知的可用资金，超出时在任何链调用前拒绝
// 这是基于最近快照的乐观检查，合约仍可能拒绝
func (a *Actions) Withdraw(ctx context.Context, issueId uint64, amount int64, adminAddress string, knownAvailable int64) (*contract.Funding, error) {
	if !a.isAdmin(adminAddress) {
		return nil, fmt.Errorf("%w: %s", ErrNotAdmin, adminAddress)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	if amount > knownAvailable {
		return nil, fmt.Errorf("%w: %d > %d", ErrInsufficientFunds, amount, knownAvailable)
	}

	if err := a.gateway.WithdrawFunds(ctx, issueId, amount); err != nil {
		logger.Error("Failed to withdraw funds from issue %d: %v", issueId, err)
		return nil, err
	}

	return a.mirrorFunding(ctx, issueId, "withdraw", amount, adminAddress)
}

// Tracker 获取确认计数器
func (a *Actions) Tracker() *ConfirmationTracker {
	return a.tracker
}

// mirrorFunding 读取权威资金数据并写镜像快照
func (a *Actions) mirrorFunding(ctx context.Context, issueId uint64, action string, amount int64, userAddress string) (*contract.Funding, error) {
	funding, err := a.gateway.GetIssueFunding(ctx, issueId)
	if err != nil {
		// 链上交易已经成功，这里只影响返回值和镜像
		return nil, fmt.Errorf("transaction succeeded but failed to re-read funding of issue %d: %w", issueId, err)
	}

	a.mirror.SubmitSnapshot(issueId, mirror.KindFundingUpdate, mirror.FundingSnapshot{
		IssueId:      issueId,
		Action:       action,
		Amount:       amount,
		UserAddress:  userAddress,
		TotalFunding: funding.TotalFunding,
		FundsUsed:    funding.FundsUsed,
		Available:    funding.Available,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Type:         mirror.KindFundingUpdate,
	})

	return funding, nil
}
