package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/panjf2000/ants/v2"
	"github.com/rishbCLN/civic-issue-reporting/internal/chain"
	"github.com/rishbCLN/civic-issue-reporting/internal/logger"
	"github.com/rishbCLN/civic-issue-reporting/internal/model"
	"github.com/rishbCLN/civic-issue-reporting/internal/status"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	pollInterval  = time.Second * 60
	batchSize     = int64(500)
	batchPause    = time.Millisecond * 500
	eventPoolSize = 8
)

// EventMonitor 链上事件监控器
// 将问题合约的事件追加到本地事件表，并把状态变更同步到问题投影
// 资金数额不在这里累加，由定时任务回读权威值
type EventMonitor struct {
	chainManager  *chain.Manager
	db            *gorm.DB
	pool          *ants.Pool
	startBlockNum int64
	ctx           context.Context
	cancel        context.CancelFunc
	mu            sync.RWMutex // 保护 startBlockNum 的并发访问
}

// NewEventMonitor 创建事件监控器
func NewEventMonitor(chainManager *chain.Manager, db *gorm.DB) (*EventMonitor, error) {
	ctx, cancel := context.WithCancel(context.Background())

	pool, err := ants.NewPool(eventPoolSize)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create event pool: %w", err)
	}

	return &EventMonitor{
		chainManager: chainManager,
		db:           db,
		pool:         pool,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

// Start 启动监控
func (m *EventMonitor) Start() error {
	logger.Info("Starting blockchain event monitor")

	contract, err := m.chainManager.GetContract(chain.CivicContractName)
	if err != nil {
		return err
	}

	// 检查 RPC 连接
	currentBlock, err := m.chainManager.GetCurrentBlockNumber(m.ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to blockchain: %w", err)
	}
	logger.Info("Connected to blockchain, current block: %d", currentBlock)

	// 起始区块取部署区块和已处理区块中的较大者
	startBlock := m.resolveStartBlock(contract)
	m.mu.Lock()
	m.startBlockNum = startBlock
	m.mu.Unlock()

	logger.Info("Starting monitor from block %d", startBlock)

	go m.loop(contract)

	return nil
}

// Stop 停止监控
func (m *EventMonitor) Stop() {
	logger.Info("Stopping blockchain event monitor")
	m.cancel()
	m.pool.Release()
}

// loop 监控循环
func (m *EventMonitor) loop(contract *chain.Contract) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Monitor stopped")
			return
		case <-ticker.C:
			currentBlock, err := m.chainManager.GetCurrentBlockNumber(m.ctx)
			if err != nil {
				logger.Error("Failed to get current block number: %v", err)
				continue
			}

			m.mu.RLock()
			fromBlock := m.startBlockNum
			m.mu.RUnlock()

			if err := m.processBlocksInBatches(contract, fromBlock, currentBlock); err != nil {
				logger.Error("Error processing blocks: %v", err)
			}
		}
	}
}

// processBlocksInBatches 分批处理区块
func (m *EventMonitor) processBlocksInBatches(contract *chain.Contract, fromBlock, toBlock int64) error {
	for currentFrom := fromBlock; currentFrom <= toBlock; currentFrom += batchSize {
		currentTo := currentFrom + batchSize - 1
		if currentTo > toBlock {
			currentTo = toBlock
		}

		logger.Debug("Processing batch blocks %d to %d", currentFrom, currentTo)
		if err := m.processBatchBlocks(contract, currentFrom, currentTo); err != nil {
			return fmt.Errorf("error processing blocks %d-%d: %w", currentFrom, currentTo, err)
		}

		m.mu.Lock()
		m.startBlockNum = currentTo + 1
		m.mu.Unlock()

		// 限制API调用频率
		time.Sleep(batchPause)
	}

	return nil
}

// processBatchBlocks 批量处理区块
func (m *EventMonitor) processBatchBlocks(contract *chain.Contract, fromBlock, toBlock int64) error {
	logs, err := m.chainManager.GetContractLogs(m.ctx, contract, fromBlock, toBlock)
	if err != nil {
		return fmt.Errorf("error getting logs for blocks %d-%d: %w", fromBlock, toBlock, err)
	}

	if len(logs) == 0 {
		return nil
	}

	logger.Debug("Found %d logs for blocks %d-%d", len(logs), fromBlock, toBlock)

	// 并发处理日志，等待全部完成后推进起始区块
	var wg sync.WaitGroup
	for _, log := range logs {
		wg.Add(1)
		eventLog := log
		err := m.pool.Submit(func() {
			defer wg.Done()
			m.processEventLog(contract, eventLog)
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit event task to pool: %v", err)
		}
	}
	wg.Wait()

	return nil
}

// processEventLog 处理单条事件日志
func (m *EventMonitor) processEventLog(contract *chain.Contract, log types.Log) {
	eventData, err := contract.ParseEvent(log)
	if err != nil {
		logger.Error("Error parsing event at block %d: %v", log.BlockNumber, err)
		return
	}

	eventDataJSON, err := json.Marshal(eventData)
	if err != nil {
		logger.Error("Failed to marshal event data to JSON: %v", err)
		return
	}

	event := &model.EventModel{
		ContractAddress: contract.GetAddress().Hex(),
		ContractName:    contract.GetName(),
		BlockNum:        int64(log.BlockNumber),
		TxHash:          log.TxHash.Hex(),
		LogIndex:        int64(log.Index),
		EventName:       eventData["eventName"].(string),
		IssueId:         extractIssueId(eventData),
		Data:            string(eventDataJSON),
	}

	// 同一事件重复出现时忽略，保证幂等
	result := m.db.Clauses(clause.OnConflict{DoNothing: true}).Create(event)
	if result.Error != nil {
		logger.Error("Failed to store event %s: %v", event.EventName, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		return
	}

	m.applyEvent(event, eventData)
	logger.Debug("Processed %s event for issue %d at block %d",
		event.EventName, event.IssueId, log.BlockNumber)
}

// applyEvent 把事件反映到问题投影
func (m *EventMonitor) applyEvent(event *model.EventModel, eventData map[string]interface{}) {
	if event.IssueId == 0 {
		return
	}

	switch event.EventName {
	case "IssueStatusUpdated":
		ordinal, ok := eventData["status"].(uint8)
		if !ok {
			logger.Warn("IssueStatusUpdated event for issue %d missing status", event.IssueId)
			return
		}
		err := m.db.Model(&model.IssueModel{}).
			Where("id = ?", event.IssueId).
			Update("status", string(status.FromOrdinal(int(ordinal)))).Error
		if err != nil {
			logger.Error("Failed to update projected status of issue %d: %v", event.IssueId, err)
		}
	case "IssueConfirmed":
		err := m.db.Model(&model.IssueModel{}).
			Where("id = ?", event.IssueId).
			Update("confirmation_count", gorm.Expr("confirmation_count + 1")).Error
		if err != nil {
			logger.Error("Failed to update confirmation count of issue %d: %v", event.IssueId, err)
		}
	}
	// IssueReported / IssueFunded / FundsWithdrawn 由同步任务回读权威值
}

// resolveStartBlock 确定起始区块号
func (m *EventMonitor) resolveStartBlock(contract *chain.Contract) int64 {
	deployBlock := contract.GetBlockNum()

	var maxProcessedBlock int64
	err := m.db.Model(&model.EventModel{}).
		Select("COALESCE(MAX(block_num), 0)").
		Scan(&maxProcessedBlock).Error
	if err != nil {
		logger.Error("Failed to get max processed block number from database: %v", err)
		return deployBlock
	}

	if maxProcessedBlock > deployBlock {
		return maxProcessedBlock + 1
	}
	return deployBlock
}

// extractIssueId 从解析后的事件参数中提取问题ID
func extractIssueId(eventData map[string]interface{}) int64 {
	if v, ok := eventData["issueId"]; ok {
		if id, ok := v.(*big.Int); ok {
			return id.Int64()
		}
	}
	return 0
}
