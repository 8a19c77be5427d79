package issue

import (
	"sync"
)

// ConfirmationQuorum 社区确认法定数
// 达到后问题被视为社区核实，这只是客户端侧的提示信号，
// 状态流转到 Confirmed 仍然是管理员或合约的职责
const ConfirmationQuorum = 3

// VerifiedCallback 达到法定数时触发的回调
type VerifiedCallback func(issueId uint64, count int)

// ConfirmationTracker 问题确认计数器
// 每个问题的回调只触发一次，严格在第N次确认时触发
type ConfirmationTracker struct {
	mu       sync.Mutex
	fired    map[uint64]bool
	callback VerifiedCallback
}

// NewConfirmationTracker 创建确认计数器
func NewConfirmationTracker(callback VerifiedCallback) *ConfirmationTracker {
	return &ConfirmationTracker{
		fired:    make(map[uint64]bool),
		callback: callback,
	}
}

// Record 记录一次确认后的最新计数
// 计数首次达到法定数时触发回调，之后不再触发
func (t *ConfirmationTracker) Record(issueId uint64, count int) {
	if count < ConfirmationQuorum {
		return
	}

	t.mu.Lock()
	if t.fired[issueId] {
		t.mu.Unlock()
		return
	}
	t.fired[issueId] = true
	callback := t.callback
	t.mu.Unlock()

	if callback != nil {
		callback(issueId, count)
	}
}

// Verified 检查问题是否已达到法定数
func (t *ConfirmationTracker) Verified(issueId uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired[issueId]
}
