package issue

import (
	"context"
	"fmt"

	"github.com/rishbCLN/civic-issue-reporting/internal/contract"
)

// fakeGateway 测试用合约网关
// 在内存中模拟合约的记账行为
type fakeGateway struct {
	issues       map[uint64]*contract.IssueRecord
	funding      map[uint64]*contract.Funding
	userFunding  map[string]int64
	confirmed    map[string]bool
	confirmCount map[uint64]int
	nextId       uint64

	deployErr  error
	countErr   error
	fundingErr map[uint64]error

	calls []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		issues:       make(map[uint64]*contract.IssueRecord),
		funding:      make(map[uint64]*contract.Funding),
		userFunding:  make(map[string]int64),
		confirmed:    make(map[string]bool),
		confirmCount: make(map[uint64]int),
		fundingErr:   make(map[uint64]error),
	}
}

// addIssue 预置一条链上问题记录
func (g *fakeGateway) addIssue(statusOrdinal int) uint64 {
	g.nextId++
	id := g.nextId
	g.issues[id] = &contract.IssueRecord{
		ID:          id,
		Reporter:    fmt.Sprintf("0xreporter%d", id),
		Location:    fmt.Sprintf("Main St %d", id),
		Description: fmt.Sprintf("pothole %d", id),
		ImageHash:   fmt.Sprintf("Qm%d", id),
		Status:      statusOrdinal,
		Timestamp:   1700000000 + int64(id),
	}
	g.funding[id] = &contract.Funding{}
	return id
}

func (g *fakeGateway) record(call string) {
	g.calls = append(g.calls, call)
}

func (g *fakeGateway) called(call string) int {
	n := 0
	for _, c := range g.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (g *fakeGateway) EnsureDeployed(ctx context.Context) error {
	g.record("EnsureDeployed")
	return g.deployErr
}

func (g *fakeGateway) IssueCount(ctx context.Context) (uint64, error) {
	g.record("IssueCount")
	if g.countErr != nil {
		return 0, g.countErr
	}
	return g.nextId, nil
}

func (g *fakeGateway) GetIssue(ctx context.Context, issueId uint64) (*contract.IssueRecord, error) {
	g.record("GetIssue")
	rec, ok := g.issues[issueId]
	if !ok {
		return nil, fmt.Errorf("issue %d not found", issueId)
	}
	copied := *rec
	return &copied, nil
}

func (g *fakeGateway) ReportIssue(ctx context.Context, location, description, imageHash string) (uint64, error) {
	g.record("ReportIssue")
	id := g.addIssue(0)
	g.issues[id].Location = location
	g.issues[id].Description = description
	g.issues[id].ImageHash = imageHash
	return id, nil
}

func (g *fakeGateway) UpdateIssueStatus(ctx context.Context, issueId uint64, statusOrdinal int) error {
	g.record("UpdateIssueStatus")
	rec, ok := g.issues[issueId]
	if !ok {
		return fmt.Errorf("issue %d not found", issueId)
	}
	rec.Status = statusOrdinal
	return nil
}

func (g *fakeGateway) ConfirmIssue(ctx context.Context, issueId uint64) error {
	g.record("ConfirmIssue")
	return nil
}

func (g *fakeGateway) ConfirmationCount(ctx context.Context, issueId uint64) (int, error) {
	g.record("ConfirmationCount")
	return g.confirmCount[issueId], nil
}

func (g *fakeGateway) HasUserConfirmed(ctx context.Context, issueId uint64, userAddress string) (bool, error) {
	g.record("HasUserConfirmed")
	return g.confirmed[confirmKey(issueId, userAddress)], nil
}

// confirm 模拟一次链上确认
func (g *fakeGateway) confirm(issueId uint64, userAddress string) {
	g.confirmed[confirmKey(issueId, userAddress)] = true
	g.confirmCount[issueId]++
}

func (g *fakeGateway) FundIssue(ctx context.Context, issueId uint64, amount int64) error {
	g.record("FundIssue")
	f, ok := g.funding[issueId]
	if !ok {
		return fmt.Errorf("issue %d not found", issueId)
	}
	f.TotalFunding += amount
	f.Available += amount
	return nil
}

func (g *fakeGateway) WithdrawFunds(ctx context.Context, issueId uint64, amount int64) error {
	g.record("WithdrawFunds")
	f, ok := g.funding[issueId]
	if !ok {
		return fmt.Errorf("issue %d not found", issueId)
	}
	if amount > f.Available {
		return fmt.Errorf("insufficient funds on chain")
	}
	f.FundsUsed += amount
	f.Available -= amount
	return nil
}

func (g *fakeGateway) GetIssueFunding(ctx context.Context, issueId uint64) (*contract.Funding, error) {
	g.record("GetIssueFunding")
	if err := g.fundingErr[issueId]; err != nil {
		return nil, err
	}
	f, ok := g.funding[issueId]
	if !ok {
		return nil, fmt.Errorf("issue %d not found", issueId)
	}
	copied := *f
	return &copied, nil
}

func (g *fakeGateway) GetUserFunding(ctx context.Context, issueId uint64, userAddress string) (int64, error) {
	g.record("GetUserFunding")
	return g.userFunding[confirmKey(issueId, userAddress)], nil
}

func confirmKey(issueId uint64, addr string) string {
	return fmt.Sprintf("%d:%s", issueId, addr)
}

// fundingState 构造资金状态
func fundingState(total, used int64) *contract.Funding {
	return &contract.Funding{
		TotalFunding: total,
		FundsUsed:    used,
		Available:    total - used,
	}
}

// fakeSnapshotter 测试用镜像
type fakeSnapshotter struct {
	snapshots []fakeSnapshot
}

type fakeSnapshot struct {
	issueId uint64
	kind    string
	payload interface{}
}

func (s *fakeSnapshotter) SubmitSnapshot(issueId uint64, kind string, payload interface{}) {
	s.snapshots = append(s.snapshots, fakeSnapshot{issueId: issueId, kind: kind, payload: payload})
}
