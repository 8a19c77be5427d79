package mirror

// 快照类型
const (
	KindIssueMetadata = "issue_metadata"
	KindStatusUpdate  = "status_update"
	KindFundingUpdate = "funding_update"
)

// IssueMetadata 问题上报快照
type IssueMetadata struct {
	Location    string `json:"location"`
	Description string `json:"description"`
	Reporter    string `json:"reporter"`
	ImageHash   string `json:"imageHash"`
	Timestamp   string `json:"timestamp"`
}

// StatusSnapshot 状态变更快照
// 存储介质不可变，每次变更都生成新快照而不是修改旧快照
type StatusSnapshot struct {
	IssueId   uint64 `json:"issueId"`
	ImageHash string `json:"imageHash,omitempty"`
	Status    string `json:"status"`
	UpdatedBy string `json:"updatedBy"`
	UpdatedAt string `json:"updatedAt"`
	Type      string `json:"type"`
}

// FundingSnapshot 资金变更快照
type FundingSnapshot struct {
	IssueId      uint64 `json:"issueId"`
	Action       string `json:"action"` // fund 或 withdraw
	Amount       int64  `json:"amount"`
	UserAddress  string `json:"userAddress"`
	TotalFunding int64  `json:"totalFunding"`
	FundsUsed    int64  `json:"fundsUsed"`
	Available    int64  `json:"available"`
	Timestamp    string `json:"timestamp"`
	Type         string `json:"type"`
}
