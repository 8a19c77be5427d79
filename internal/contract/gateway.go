package contract

import (
	"context"
)

// IssueRecord 链上问题记录
// status 保留原始状态码，由上层决定如何映射
type IssueRecord struct {
	ID          uint64
	Reporter    string
	Location    string
	Description string
	ImageHash   string
	Status      int
	Timestamp   int64
}

// Funding 链上资金记录
type Funding struct {
	TotalFunding int64 `json:"totalFunding"`
	FundsUsed    int64 `json:"fundsUsed"`
	Available    int64 `json:"available"`
}

// Gateway 合约调用接口
// 合约是唯一的权威状态源，这里只做调用转发，不在本地复刻合约语义
type Gateway interface {
	// EnsureDeployed 检查合约是否已部署，未部署视为网络配置错误
	EnsureDeployed(ctx context.Context) error

	// IssueCount 获取问题总数
	IssueCount(ctx context.Context) (uint64, error)

	// GetIssue 获取单个问题
	GetIssue(ctx context.Context, issueId uint64) (*IssueRecord, error)

	// ReportIssue 上报问题，返回合约分配的问题ID
	ReportIssue(ctx context.Context, location, description, imageHash string) (uint64, error)

	// UpdateIssueStatus 更新问题状态
	UpdateIssueStatus(ctx context.Context, issueId uint64, statusOrdinal int) error

	// ConfirmIssue 确认问题已解决
	ConfirmIssue(ctx context.Context, issueId uint64) error

	// ConfirmationCount 获取确认数
	ConfirmationCount(ctx context.Context, issueId uint64) (int, error)

	// HasUserConfirmed 检查用户是否已确认
	HasUserConfirmed(ctx context.Context, issueId uint64, userAddress string) (bool, error)

	// FundIssue 为问题注资
	FundIssue(ctx context.Context, issueId uint64, amount int64) error

	// WithdrawFunds 提取资金
	WithdrawFunds(ctx context.Context, issueId uint64, amount int64) error

	// GetIssueFunding 获取问题资金记录
	GetIssueFunding(ctx context.Context, issueId uint64) (*Funding, error)

	// GetUserFunding 获取用户对某问题的注资总额
	GetUserFunding(ctx context.Context, issueId uint64, userAddress string) (int64, error)
}
