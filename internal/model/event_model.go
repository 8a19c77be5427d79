package model

import (
	"time"
)

// EventModel 链上事件记录
type EventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	// 事件来源
	ContractAddress string `json:"contract_address" gorm:"not null"`
	ContractName    string `json:"contract_name"`
	BlockNum        int64  `json:"block_num" gorm:"index"`
	TxHash          string `json:"tx_hash" gorm:"uniqueIndex:idx_event_tx_log"`
	LogIndex        int64  `json:"log_index" gorm:"uniqueIndex:idx_event_tx_log"`

	// 事件内容
	EventName string `json:"event_name" gorm:"index"`
	IssueId   int64  `json:"issue_id" gorm:"index"`
	Data      string `json:"data" gorm:"type:text"` // 解析后的事件参数JSON
}

// TableName 自定义表名
func (EventModel) TableName() string {
	return "event"
}
