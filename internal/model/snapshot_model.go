package model

import (
	"time"
)

// SnapshotModel IPFS快照记录
// 镜像只追加，不修改已有快照，这里保存每次上传返回的内容哈希
type SnapshotModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	IssueId int64  `json:"issue_id" gorm:"index"`
	Kind    string `json:"kind" gorm:"index"` // issue_metadata / status_update / funding_update
	Cid     string `json:"cid" gorm:"not null"`
	Payload string `json:"payload" gorm:"type:text"` // 上传的快照JSON
}

// TableName 自定义表名
func (SnapshotModel) TableName() string {
	return "snapshot"
}
