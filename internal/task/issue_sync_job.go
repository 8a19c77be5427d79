package task

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rishbCLN/civic-issue-reporting/internal/config"
	"github.com/rishbCLN/civic-issue-reporting/internal/issue"
	"github.com/rishbCLN/civic-issue-reporting/internal/logger"
	"github.com/rishbCLN/civic-issue-reporting/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IssueSyncJob 问题同步任务, 从链上读取全量问题并刷新本地缓存
type IssueSyncJob struct {
	db       *gorm.DB
	reader   *issue.Reader
	interval int
}

// NewIssueSyncJob 创建问题同步任务
func NewIssueSyncJob(db *gorm.DB, reader *issue.Reader, cfg *config.Config) *IssueSyncJob {
	interval := cfg.Task.Interval
	if interval <= 0 {
		interval = 120
	}
	return &IssueSyncJob{
		db:       db,
		reader:   reader,
		interval: interval,
	}
}

// GetName 获取任务名称
func (j *IssueSyncJob) GetName() string {
	return "issue_sync"
}

// GetSchedule 获取任务调度配置
func (j *IssueSyncJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.interval) * time.Second)
}

// Execute 执行任务
func (j *IssueSyncJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	issues, err := j.reader.ListIssues(ctx, true)
	if err != nil {
		logger.Error("Issue sync failed to list issues: %v", err)
		return
	}

	synced := 0
	for _, it := range issues {
		count, err := j.reader.ConfirmationCount(ctx, it.ID)
		if err != nil {
			logger.Warn("Issue sync failed to read confirmations for issue %d: %v", it.ID, err)
			count = 0
		}

		record := &model.IssueModel{
			Id:                int64(it.ID),
			Reporter:          it.Reporter,
			Location:          it.Location,
			Description:       it.Description,
			ImageHash:         it.ImageHash,
			Status:            string(it.Status),
			ReportedAt:        it.Timestamp,
			TotalFunding:      it.TotalFunding,
			FundsUsed:         it.FundsUsed,
			AvailableFunds:    it.AvailableFunds,
			ConfirmationCount: count,
		}

		result := j.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(record)
		if result.Error != nil {
			logger.Error("Issue sync failed to upsert issue %d: %v", it.ID, result.Error)
			continue
		}
		synced++
	}

	logger.Info("Issue sync completed, synced %d/%d issues", synced, len(issues))
}
