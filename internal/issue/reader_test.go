package issue

import (
	"context"
	"errors"
	"testing"

	"github.com/rishbCLN/civic-issue-reporting/internal/status"
)

func TestListIssuesEmpty(t *testing.T) {
	gw := newFakeGateway()
	reader := NewReader(gw)

	issues, err := reader.ListIssues(context.Background(), true)
	if err != nil {
		t.Fatalf("ListIssues returned error: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected empty listing, got %d issues", len(issues))
	}

	// 总数为0时除读总数外不发起其他链调用
	if n := gw.called("GetIssue"); n != 0 {
		t.Errorf("expected no GetIssue calls, got %d", n)
	}
	if n := gw.called("GetIssueFunding"); n != 0 {
		t.Errorf("expected no GetIssueFunding calls, got %d", n)
	}
}

func TestListIssuesOrder(t *testing.T) {
	gw := newFakeGateway()
	for i := 0; i < 5; i++ {
		gw.addIssue(i)
	}
	reader := NewReader(gw)

	issues, err := reader.ListIssues(context.Background(), false)
	if err != nil {
		t.Fatalf("ListIssues returned error: %v", err)
	}
	if len(issues) != 5 {
		t.Fatalf("expected 5 issues, got %d", len(issues))
	}

	// 按ID从1到总数顺序返回
	for i, issue := range issues {
		if issue.ID != uint64(i+1) {
			t.Errorf("issue at index %d has id %d, want %d", i, issue.ID, i+1)
		}
	}

	// 状态码按表映射
	if issues[0].Status != status.StatusReported {
		t.Errorf("issue 1 status = %q, want %q", issues[0].Status, status.StatusReported)
	}
	if issues[3].Status != status.StatusResolved {
		t.Errorf("issue 4 status = %q, want %q", issues[3].Status, status.StatusResolved)
	}
}

func TestListIssuesNoContract(t *testing.T) {
	gw := newFakeGateway()
	gw.addIssue(0)
	gw.deployErr = errors.New("no contract code at configured address")
	reader := NewReader(gw)

	if _, err := reader.ListIssues(context.Background(), false); err == nil {
		t.Fatal("expected error when contract is not deployed")
	}

	// 网络配置错误必须快速失败，不读任何问题
	if n := gw.called("IssueCount"); n != 0 {
		t.Errorf("expected no IssueCount calls, got %d", n)
	}
}

func TestListIssuesCountFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.addIssue(0)
	gw.countErr = errors.New("rpc timeout")
	reader := NewReader(gw)

	if _, err := reader.ListIssues(context.Background(), false); err == nil {
		t.Fatal("expected error when count read fails")
	}
	if n := gw.called("GetIssue"); n != 0 {
		t.Errorf("expected no GetIssue calls after count failure, got %d", n)
	}
}

func TestListIssuesFundingDegraded(t *testing.T) {
	gw := newFakeGateway()
	for i := 0; i < 5; i++ {
		id := gw.addIssue(0)
		gw.funding[id].TotalFunding = 100
		gw.funding[id].Available = 100
	}
	// 第3条的资金读取失败
	gw.fundingErr[3] = errors.New("rpc error")
	reader := NewReader(gw)

	issues, err := reader.ListIssues(context.Background(), true)
	if err != nil {
		t.Fatalf("ListIssues returned error: %v", err)
	}
	if len(issues) != 5 {
		t.Fatalf("expected 5 issues, got %d", len(issues))
	}

	// 失败的那条降级为零值，其他不受影响
	if issues[2].TotalFunding != 0 || issues[2].AvailableFunds != 0 {
		t.Errorf("issue 3 funding = (%d, %d), want (0, 0)",
			issues[2].TotalFunding, issues[2].AvailableFunds)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if issues[i].TotalFunding != 100 {
			t.Errorf("issue %d total funding = %d, want 100", i+1, issues[i].TotalFunding)
		}
	}
}

func TestUserFunding(t *testing.T) {
	gw := newFakeGateway()
	id := gw.addIssue(0)
	gw.userFunding[confirmKey(id, "0xfunder")] = 75
	reader := NewReader(gw)

	amount, err := reader.UserFunding(context.Background(), id, "0xfunder")
	if err != nil {
		t.Fatalf("UserFunding returned error: %v", err)
	}
	if amount != 75 {
		t.Errorf("amount = %d, want 75", amount)
	}
	if got := gw.called("GetUserFunding"); got != 1 {
		t.Errorf("GetUserFunding called %d times, want 1", got)
	}

	// 未注资地址返回零
	amount, err = reader.UserFunding(context.Background(), id, "0xother")
	if err != nil {
		t.Fatalf("UserFunding returned error: %v", err)
	}
	if amount != 0 {
		t.Errorf("amount = %d, want 0", amount)
	}
}

func TestAvailableFundsDerived(t *testing.T) {
	gw := newFakeGateway()
	id1 := gw.addIssue(0)
	gw.funding[id1] = fundingState(120, 50)
	id2 := gw.addIssue(2)
	gw.funding[id2] = fundingState(0, 0)
	id3 := gw.addIssue(3)
	gw.funding[id3] = fundingState(75, 75)
	reader := NewReader(gw)

	issues, err := reader.ListIssues(context.Background(), true)
	if err != nil {
		t.Fatalf("ListIssues returned error: %v", err)
	}

	// available == totalFunding - fundsUsed 对每条记录成立
	for _, issue := range issues {
		if issue.AvailableFunds != issue.TotalFunding-issue.FundsUsed {
			t.Errorf("issue %d: available %d != total %d - used %d",
				issue.ID, issue.AvailableFunds, issue.TotalFunding, issue.FundsUsed)
		}
		if issue.AvailableFunds < 0 {
			t.Errorf("issue %d: negative available funds %d", issue.ID, issue.AvailableFunds)
		}
	}
}

func TestGetIssue(t *testing.T) {
	gw := newFakeGateway()
	id := gw.addIssue(1)
	reader := NewReader(gw)

	issue, err := reader.GetIssue(context.Background(), id, false)
	if err != nil {
		t.Fatalf("GetIssue returned error: %v", err)
	}
	if issue.ID != id {
		t.Errorf("issue id = %d, want %d", issue.ID, id)
	}
	if issue.Status != status.StatusUnderReview {
		t.Errorf("issue status = %q, want %q", issue.Status, status.StatusUnderReview)
	}
}
