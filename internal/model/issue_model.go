package model

import (
	"time"
)

// IssueModel 链上问题的本地投影
// 仅作为仪表盘的读缓存，链上合约才是权威数据源
type IssueModel struct {
	Id        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"` // 合约分配的问题ID
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Reporter    string `json:"reporter" gorm:"not null"`
	Location    string `json:"location" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	ImageHash   string `json:"image_hash"`

	// 状态
	Status     string `json:"status" gorm:"default:'Reported';index"`
	ReportedAt int64  `json:"reported_at"` // 链上时间戳（秒）

	// 资金信息，只存链上读回的权威值
	TotalFunding   int64 `json:"total_funding" gorm:"default:0"`
	FundsUsed      int64 `json:"funds_used" gorm:"default:0"`
	AvailableFunds int64 `json:"available_funds" gorm:"default:0"`

	// 确认信息
	ConfirmationCount int `json:"confirmation_count" gorm:"default:0"`
}

// TableName 自定义表名
func (IssueModel) TableName() string {
	return "issue"
}
