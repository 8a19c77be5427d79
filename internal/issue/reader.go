package issue

import (
	"context"
	"fmt"

	"github.com/rishbCLN/civic-issue-reporting/internal/contract"
	"github.com/rishbCLN/civic-issue-reporting/internal/logger"
	"github.com/rishbCLN/civic-issue-reporting/internal/status"
)

// Issue 规范化的问题记录
type Issue struct {
	ID          uint64             `json:"id"`
	Reporter    string             `json:"reporter"`
	Location    string             `json:"location"`
	Description string             `json:"description"`
	ImageHash   string             `json:"image_hash,omitempty"`
	Status      status.IssueStatus `json:"status"`
	Timestamp   int64              `json:"timestamp"`

	// 资金信息，请求时附带
	TotalFunding   int64 `json:"total_funding"`
	FundsUsed      int64 `json:"funds_used"`
	AvailableFunds int64 `json:"available_funds"`
}

// Reader 从合约读取问题列表
type Reader struct {
	gateway contract.Gateway
}

// NewReader 创建问题读取器
func NewReader(gateway contract.Gateway) *Reader {
	return &Reader{gateway: gateway}
}

// ListIssues 枚举合约中的全部问题
// 先读总数，再按ID从1到总数顺序读取
// 总数读取失败或合约未部署时整体失败；单个问题的资金读取失败只降级该条记录
func (r *Reader) ListIssues(ctx context.Context, withFunding bool) ([]Issue, error) {
	if err := r.gateway.EnsureDeployed(ctx); err != nil {
		return nil, err
	}

	count, err := r.gateway.IssueCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read issue count: %w", err)
	}

	issues := make([]Issue, 0, count)
	for id := uint64(1); id <= count; id++ {
		issue, err := r.readIssue(ctx, id, withFunding)
		if err != nil {
			return nil, fmt.Errorf("failed to read issue %d: %w", id, err)
		}
		issues = append(issues, *issue)
	}

	return issues, nil
}

// GetIssue 读取单个问题
func (r *Reader) GetIssue(ctx context.Context, issueId uint64, withFunding bool) (*Issue, error) {
	if err := r.gateway.EnsureDeployed(ctx); err != nil {
		return nil, err
	}
	return r.readIssue(ctx, issueId, withFunding)
}

// ConfirmationCount 读取问题的确认数
func (r *Reader) ConfirmationCount(ctx context.Context, issueId uint64) (int, error) {
	return r.gateway.ConfirmationCount(ctx, issueId)
}

// UserFunding 读取某地址对问题的注资总额
func (r *Reader) UserFunding(ctx context.Context, issueId uint64, userAddress string) (int64, error) {
	amount, err := r.gateway.GetUserFunding(ctx, issueId, userAddress)
	if err != nil {
		return 0, fmt.Errorf("failed to read user funding of issue %d: %w", issueId, err)
	}
	return amount, nil
}

// readIssue 组装单条问题记录
func (r *Reader) readIssue(ctx context.Context, issueId uint64, withFunding bool) (*Issue, error) {
	record, err := r.gateway.GetIssue(ctx, issueId)
	if err != nil {
		return nil, err
	}

	issue := &Issue{
		ID:          record.ID,
		Reporter:    record.Reporter,
		Location:    record.Location,
		Description: record.Description,
		ImageHash:   record.ImageHash,
		Status:      status.FromOrdinal(record.Status),
		Timestamp:   record.Timestamp,
	}

	if withFunding {
		funding, err := r.gateway.GetIssueFunding(ctx, issueId)
		if err != nil {
			// 单个问题的资金读取失败降级为零值，不中断整个列表
			logger.Error("Failed to fetch funding for issue %d: %v", issueId, err)
		} else {
			issue.TotalFunding = funding.TotalFunding
			issue.FundsUsed = funding.FundsUsed
			issue.AvailableFunds = funding.TotalFunding - funding.FundsUsed
		}
	}

	return issue, nil
}
