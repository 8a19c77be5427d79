package issue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rishbCLN/civic-issue-reporting/internal/mirror"
	"github.com/rishbCLN/civic-issue-reporting/internal/status"
)

const adminAddr = "0xAdmin0000000000000000000000000000000001"

func isAdminFunc(address string) bool {
	return address == adminAddr
}

func newTestActions(gw *fakeGateway, onVerified VerifiedCallback) (*Actions, *fakeSnapshotter) {
	snaps := &fakeSnapshotter{}
	return NewActions(gw, snaps, isAdminFunc, onVerified), snaps
}

func TestReportValidation(t *testing.T) {
	gw := newFakeGateway()
	actions, _ := newTestActions(gw, nil)

	cases := []ReportRequest{
		{Location: "", Description: "desc", ImageHash: "Qm1"},
		{Location: "loc", Description: "", ImageHash: "Qm1"},
		{Location: "loc", Description: "desc", ImageHash: ""},
	}
	for i, req := range cases {
		if _, err := actions.Report(context.Background(), req); !errors.Is(err, ErrMissingField) {
			t.Errorf("case %d: expected ErrMissingField, got %v", i, err)
		}
	}

	// 校验失败时不发起任何网络调用
	if len(gw.calls) != 0 {
		t.Errorf("expected no gateway calls, got %v", gw.calls)
	}
}

func TestReport(t *testing.T) {
	gw := newFakeGateway()
	actions, snaps := newTestActions(gw, nil)

	id, err := actions.Report(context.Background(), ReportRequest{
		Location:    "5th Ave",
		Description: "broken streetlight",
		ImageHash:   "QmImage",
		Reporter:    "0xcitizen",
	})
	if err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	if id != 1 {
		t.Errorf("issue id = %d, want 1", id)
	}

	if len(snaps.snapshots) != 1 {
		t.Fatalf("expected 1 mirror snapshot, got %d", len(snaps.snapshots))
	}
	if snaps.snapshots[0].kind != mirror.KindIssueMetadata {
		t.Errorf("snapshot kind = %q, want %q", snaps.snapshots[0].kind, mirror.KindIssueMetadata)
	}
}

func TestUpdateStatusNonAdmin(t *testing.T) {
	gw := newFakeGateway()
	gw.addIssue(0)
	actions, _ := newTestActions(gw, nil)

	err := actions.UpdateStatus(context.Background(), 1, status.StatusInProgress, "0xnotadmin")
	if !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}

	// 非管理员请求不触达链
	if n := gw.called("UpdateIssueStatus"); n != 0 {
		t.Errorf("expected no UpdateIssueStatus calls, got %d", n)
	}
}

func TestUpdateStatus(t *testing.T) {
	gw := newFakeGateway()
	id := gw.addIssue(1)
	actions, snaps := newTestActions(gw, nil)

	if err := actions.UpdateStatus(context.Background(), id, status.StatusInProgress, adminAddr); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}

	if gw.issues[id].Status != status.StatusInProgress.Ordinal() {
		t.Errorf("on-chain status = %d, want %d", gw.issues[id].Status, status.StatusInProgress.Ordinal())
	}
	if len(snaps.snapshots) != 1 || snaps.snapshots[0].kind != mirror.KindStatusUpdate {
		t.Errorf("expected one status_update snapshot, got %+v", snaps.snapshots)
	}
}

func TestUpdateStatusTerminal(t *testing.T) {
	gw := newFakeGateway()
	id := gw.addIssue(status.StatusConfirmed.Ordinal())
	actions, _ := newTestActions(gw, nil)

	err := actions.UpdateStatus(context.Background(), id, status.StatusInProgress, adminAddr)
	if !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("expected ErrTerminalStatus, got %v", err)
	}
	if n := gw.called("UpdateIssueStatus"); n != 0 {
		t.Errorf("expected no UpdateIssueStatus calls, got %d", n)
	}
}

func TestConfirmGates(t *testing.T) {
	gw := newFakeGateway()
	inProgress := gw.addIssue(status.StatusInProgress.Ordinal())
	resolved := gw.addIssue(status.StatusResolved.Ordinal())
	actions, _ := newTestActions(gw, nil)

	// 非 Resolved 状态不可确认
	if _, err := actions.Confirm(context.Background(), inProgress, "0xuser1"); !errors.Is(err, ErrNotResolved) {
		t.Errorf("expected ErrNotResolved, got %v", err)
	}

	// 管理员不参与确认
	if _, err := actions.Confirm(context.Background(), resolved, adminAddr); !errors.Is(err, ErrAdminConfirm) {
		t.Errorf("expected ErrAdminConfirm, got %v", err)
	}

	// 同一地址只能确认一次
	gw.confirm(resolved, "0xuser1")
	if _, err := actions.Confirm(context.Background(), resolved, "0xuser1"); !errors.Is(err, ErrAlreadyConfirmed) {
		t.Errorf("expected ErrAlreadyConfirmed, got %v", err)
	}

	if n := gw.called("ConfirmIssue"); n != 0 {
		t.Errorf("expected no ConfirmIssue calls, got %d", n)
	}
}

func TestConfirmQuorumCallback(t *testing.T) {
	gw := newFakeGateway()
	id := gw.addIssue(status.StatusResolved.Ordinal())

	fired := 0
	var firedAt int
	actions, _ := newTestActions(gw, func(issueId uint64, count int) {
		fired++
		firedAt = count
	})

	// 3个不同地址依次确认，回调恰好在第3次触发
	for i := 1; i <= 3; i++ {
		addr := fmt.Sprintf("0xuser%d", i)
		// 交易上链后重新读取的权威计数
		gw.confirmCount[id] = i

		count, err := actions.Confirm(context.Background(), id, addr)
		if err != nil {
			t.Fatalf("confirm %d returned error: %v", i, err)
		}
		if count != i {
			t.Errorf("confirmation count = %d, want %d", count, i)
		}
		if i < 3 && fired != 0 {
			t.Fatalf("callback fired early at confirmation %d", i)
		}
		gw.confirmed[confirmKey(id, addr)] = true
	}

	if fired != 1 {
		t.Fatalf("callback fired %d times, want exactly 1", fired)
	}
	if firedAt != 3 {
		t.Errorf("callback fired at count %d, want 3", firedAt)
	}

	// 第4次确认不再触发
	gw.confirmCount[id] = 4
	if _, err := actions.Confirm(context.Background(), id, "0xuser4"); err != nil {
		t.Fatalf("confirm 4 returned error: %v", err)
	}
	if fired != 1 {
		t.Errorf("callback fired %d times after 4th confirmation, want 1", fired)
	}
}

func TestFund(t *testing.T) {
	gw := newFakeGateway()
	id := gw.addIssue(0)
	gw.funding[id] = fundingState(100, 40)
	actions, snaps := newTestActions(gw, nil)

	funding, err := actions.Fund(context.Background(), id, 50, "0xfunder")
	if err != nil {
		t.Fatalf("Fund returned error: %v", err)
	}

	// 注资后总额和可用各增加注资额，已用不变
	if funding.TotalFunding != 150 {
		t.Errorf("total funding = %d, want 150", funding.TotalFunding)
	}
	if funding.Available != 110 {
		t.Errorf("available = %d, want 110", funding.Available)
	}
	if funding.FundsUsed != 40 {
		t.Errorf("funds used = %d, want 40", funding.FundsUsed)
	}

	// 镜像写的是链上重新读取的权威值
	if len(snaps.snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps.snapshots))
	}
	payload := snaps.snapshots[0].payload.(mirror.FundingSnapshot)
	if payload.Action != "fund" || payload.TotalFunding != 150 || payload.Available != 110 {
		t.Errorf("unexpected funding snapshot: %+v", payload)
	}
}

func TestFundInvalidAmount(t *testing.T) {
	gw := newFakeGateway()
	id := gw.addIssue(0)
	actions, _ := newTestActions(gw, nil)

	for _, amount := range []int64{0, -10} {
		if _, err := actions.Fund(context.Background(), id, amount, "0xfunder"); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Fund(%d): expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if n := gw.called("FundIssue"); n != 0 {
		t.Errorf("expected no FundIssue calls, got %d", n)
	}
}

func TestWithdraw(t *testing.T) {
	gw := newFakeGateway()
	id := gw.addIssue(0)
	gw.funding[id] = fundingState(200, 50)
	actions, _ := newTestActions(gw, nil)

	funding, err := actions.Withdraw(context.Background(), id, 100, adminAddr, 150)
	if err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}

	// 提款后已用增加、可用减少，总额不变
	if funding.TotalFunding != 200 {
		t.Errorf("total funding = %d, want 200", funding.TotalFunding)
	}
	if funding.FundsUsed != 150 {
		t.Errorf("funds used = %d, want 150", funding.FundsUsed)
	}
	if funding.Available != 50 {
		t.Errorf("available = %d, want 50", funding.Available)
	}
}

func TestWithdrawExceedsAvailable(t *testing.T) {
	gw := newFakeGateway()
	id := gw.addIssue(0)
	gw.funding[id] = fundingState(200, 50)
	actions, _ := newTestActions(gw, nil)

	_, err := actions.Withdraw(context.Background(), id, 151, adminAddr, 150)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// 超额提款在任何链调用前被拒绝
	if len(gw.calls) != 0 {
		t.Errorf("expected no gateway calls, got %v", gw.calls)
	}
}

func TestWithdrawNonAdmin(t *testing.T) {
	gw := newFakeGateway()
	id := gw.addIssue(0)
	gw.funding[id] = fundingState(200, 0)
	actions, _ := newTestActions(gw, nil)

	if _, err := actions.Withdraw(context.Background(), id, 10, "0xnotadmin", 200); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if n := gw.called("WithdrawFunds"); n != 0 {
		t.Errorf("expected no WithdrawFunds calls, got %d", n)
	}
}

func TestIsUserRejected(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("User rejected the request"), true},
		{errors.New("MetaMask Tx Signature: User denied transaction signature"), true},
		{errors.New("execution reverted"), false},
		{errors.New("rpc timeout"), false},
	}
	for _, c := range cases {
		if got := IsUserRejected(c.err); got != c.want {
			t.Errorf("IsUserRejected(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
