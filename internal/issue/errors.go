package issue

import (
	"errors"
	"strings"
)

var (
	// ErrMissingField 必填字段为空，在任何网络调用前本地拒绝
	ErrMissingField = errors.New("missing required field")

	// ErrNotAdmin 非管理员地址，状态变更和提款在触达链之前拒绝
	// 白名单只是前置校验，真正的权限由合约强制执行
	ErrNotAdmin = errors.New("address is not an administrator")

	// ErrInvalidAmount 金额必须为正整数
	ErrInvalidAmount = errors.New("amount must be a positive integer")

	// ErrInsufficientFunds 提款金额超过已知可用资金
	// 基于最近一次读取的快照做乐观检查，合约仍是最终仲裁者
	ErrInsufficientFunds = errors.New("amount exceeds known available funds")

	// ErrNotResolved 只有 Resolved 状态的问题可以被确认
	ErrNotResolved = errors.New("issue is not in resolved status")

	// ErrAlreadyConfirmed 每个地址对同一问题只能确认一次
	ErrAlreadyConfirmed = errors.New("address has already confirmed this issue")

	// ErrAdminConfirm 管理员不参与社区确认
	ErrAdminConfirm = errors.New("administrators cannot confirm issues")

	// ErrTerminalStatus Confirmed 状态之后不再变更状态
	ErrTerminalStatus = errors.New("issue status is terminal")
)

// 钱包拒签的错误标记
var rejectionMarkers = []string{
	"user rejected",
	"user denied",
}

// IsUserRejected 判断错误是否为用户拒签
// 拒签作为中性提示展示，不按普通错误处理
func IsUserRejected(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range rejectionMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
