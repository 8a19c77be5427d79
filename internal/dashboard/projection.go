package dashboard

import (
	"strings"

	"github.com/rishbCLN/civic-issue-reporting/internal/issue"
	"github.com/rishbCLN/civic-issue-reporting/internal/status"
)

// FilterAll 不按状态过滤
const FilterAll = "All"

// Filter 仪表盘筛选条件
type Filter struct {
	Query  string // 地点或描述的搜索词，忽略大小写
	Status string // 状态名或 All
}

// Apply 对问题列表应用筛选
func Apply(issues []issue.Issue, filter Filter) []issue.Issue {
	query := strings.ToLower(filter.Query)

	filtered := make([]issue.Issue, 0, len(issues))
	for _, i := range issues {
		if query != "" &&
			!strings.Contains(strings.ToLower(i.Location), query) &&
			!strings.Contains(strings.ToLower(i.Description), query) {
			continue
		}
		if filter.Status != "" && filter.Status != FilterAll && string(i.Status) != filter.Status {
			continue
		}
		filtered = append(filtered, i)
	}

	return filtered
}

// Stats 各状态的问题计数
type Stats struct {
	Total       int `json:"total"`
	Reported    int `json:"reported"`
	UnderReview int `json:"under_review"`
	InProgress  int `json:"in_progress"`
	Resolved    int `json:"resolved"`
	Rejected    int `json:"rejected"`
	Confirmed   int `json:"confirmed"`
}

// Count 统计各状态的问题数
func Count(issues []issue.Issue) Stats {
	stats := Stats{Total: len(issues)}
	for _, i := range issues {
		switch i.Status {
		case status.StatusReported:
			stats.Reported++
		case status.StatusUnderReview:
			stats.UnderReview++
		case status.StatusInProgress:
			stats.InProgress++
		case status.StatusResolved:
			stats.Resolved++
		case status.StatusRejected:
			stats.Rejected++
		case status.StatusConfirmed:
			stats.Confirmed++
		}
	}
	return stats
}
