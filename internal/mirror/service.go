package mirror

import (
	"context"
	"encoding/json"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rishbCLN/civic-issue-reporting/internal/logger"
	"github.com/rishbCLN/civic-issue-reporting/internal/model"
	"gorm.io/gorm"
)

const defaultUploadTimeout = 30 * time.Second

// Service 元数据镜像服务
// 只写、尽力而为，上传失败永远不会影响链上操作的结果
type Service struct {
	uploader Uploader
	db       *gorm.DB
	pool     *ants.Pool
}

// NewService 创建镜像服务
// db 可以为空，此时不保存快照记录
func NewService(uploader Uploader, db *gorm.DB, poolSize int) (*Service, error) {
	if poolSize <= 0 {
		poolSize = 8
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &Service{
		uploader: uploader,
		db:       db,
		pool:     pool,
	}, nil
}

// PinSnapshot 同步上传快照并记录内容哈希
func (s *Service) PinSnapshot(ctx context.Context, issueId uint64, kind string, payload interface{}) (string, error) {
	cid, err := s.uploader.PinJSON(ctx, payload)
	if err != nil {
		return "", err
	}

	s.recordSnapshot(issueId, kind, cid, payload)
	return cid, nil
}

// SubmitSnapshot 异步上传快照
// 失败只记录警告日志，不重试、不上报给调用方
func (s *Service) SubmitSnapshot(issueId uint64, kind string, payload interface{}) {
	err := s.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultUploadTimeout)
		defer cancel()

		cid, err := s.uploader.PinJSON(ctx, payload)
		if err != nil {
			logger.Warn("Mirror upload failed for issue %d (%s), on-chain action unaffected: %v",
				issueId, kind, err)
			return
		}

		s.recordSnapshot(issueId, kind, cid, payload)
		logger.Debug("Mirrored %s snapshot for issue %d: %s", kind, issueId, cid)
	})
	if err != nil {
		logger.Warn("Failed to submit mirror task for issue %d (%s): %v", issueId, kind, err)
	}
}

// recordSnapshot 保存快照记录
func (s *Service) recordSnapshot(issueId uint64, kind, cid string, payload interface{}) {
	if s.db == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("Failed to marshal snapshot payload for issue %d: %v", issueId, err)
		data = nil
	}

	snapshot := &model.SnapshotModel{
		IssueId: int64(issueId),
		Kind:    kind,
		Cid:     cid,
		Payload: string(data),
	}
	if err := s.db.Create(snapshot).Error; err != nil {
		logger.Warn("Failed to record snapshot %s for issue %d: %v", cid, issueId, err)
	}
}

// Uploader 暴露底层上传客户端
func (s *Service) Uploader() Uploader {
	return s.uploader
}

// Close 关闭镜像服务
func (s *Service) Close() {
	s.pool.Release()
}
