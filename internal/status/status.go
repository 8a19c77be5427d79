package status

import (
	"errors"
	"fmt"
)

// IssueStatus 问题状态
type IssueStatus string

const (
	StatusReported    IssueStatus = "Reported"     // 已上报
	StatusUnderReview IssueStatus = "Under Review" // 审核中
	StatusInProgress  IssueStatus = "In Progress"  // 处理中
	StatusResolved    IssueStatus = "Resolved"     // 已解决
	StatusRejected    IssueStatus = "Rejected"     // 已驳回
	StatusConfirmed   IssueStatus = "Confirmed"    // 已确认
)

// ErrUnknownStatus 未知状态
var ErrUnknownStatus = errors.New("unknown issue status")

var ordinalToStatus = map[int]IssueStatus{
	0: StatusReported,
	1: StatusUnderReview,
	2: StatusInProgress,
	3: StatusResolved,
	4: StatusRejected,
	5: StatusConfirmed,
}

var statusToOrdinal = map[IssueStatus]int{
	StatusReported:    0,
	StatusUnderReview: 1,
	StatusInProgress:  2,
	StatusResolved:    3,
	StatusRejected:    4,
	StatusConfirmed:   5,
}

// FromOrdinal 将链上状态码转换为状态
// 未知状态码回退为 StatusReported，读取路径不允许报错
func FromOrdinal(ordinal int) IssueStatus {
	if s, ok := ordinalToStatus[ordinal]; ok {
		return s
	}
	return StatusReported
}

// ParseOrdinal 严格解析链上状态码
// 用于写入路径，未知状态码直接报错而不是静默回退
func ParseOrdinal(ordinal int) (IssueStatus, error) {
	s, ok := ordinalToStatus[ordinal]
	if !ok {
		return "", fmt.Errorf("%w: ordinal %d", ErrUnknownStatus, ordinal)
	}
	return s, nil
}

// Ordinal 将状态转换为链上状态码
func (s IssueStatus) Ordinal() int {
	if n, ok := statusToOrdinal[s]; ok {
		return n
	}
	return 0
}

// Valid 检查是否为已定义的状态
func (s IssueStatus) Valid() bool {
	_, ok := statusToOrdinal[s]
	return ok
}

// Terminal 检查是否为终态
// Rejected 和 Confirmed 之后不再有状态流转
func (s IssueStatus) Terminal() bool {
	return s == StatusRejected || s == StatusConfirmed
}

// Parse 解析状态名称
func Parse(name string) (IssueStatus, error) {
	s := IssueStatus(name)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, name)
	}
	return s, nil
}

// All 返回全部状态，按状态码升序
func All() []IssueStatus {
	return []IssueStatus{
		StatusReported,
		StatusUnderReview,
		StatusInProgress,
		StatusResolved,
		StatusRejected,
		StatusConfirmed,
	}
}
