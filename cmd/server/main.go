package main

import (
	"github.com/gin-gonic/gin"
	"github.com/rishbCLN/civic-issue-reporting/internal/chain"
	"github.com/rishbCLN/civic-issue-reporting/internal/config"
	"github.com/rishbCLN/civic-issue-reporting/internal/contract"
	"github.com/rishbCLN/civic-issue-reporting/internal/database"
	"github.com/rishbCLN/civic-issue-reporting/internal/ethereum"
	"github.com/rishbCLN/civic-issue-reporting/internal/issue"
	"github.com/rishbCLN/civic-issue-reporting/internal/logger"
	"github.com/rishbCLN/civic-issue-reporting/internal/mirror"
	"github.com/rishbCLN/civic-issue-reporting/internal/monitor"
	"github.com/rishbCLN/civic-issue-reporting/internal/router"
	"github.com/rishbCLN/civic-issue-reporting/internal/task"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	initLogger(cfg.Log)
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化链管理器
	chainManager, err := chain.NewManager(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize chain manager: %v", err)
	}
	defer chainManager.Close()

	// 初始化以太坊客户端
	ethClient, err := ethereum.Init(cfg.Chain, chainManager)
	if err != nil {
		logger.Fatal("Failed to initialize ethereum client: %v", err)
	}

	// 合约访问网关
	gateway := contract.NewRPCGateway(ethClient, chainManager)

	// 元数据镜像服务
	pinata := mirror.NewClient(cfg.Pinata)
	mirrorSvc, err := mirror.NewService(pinata, db, 8)
	if err != nil {
		logger.Fatal("Failed to initialize mirror service: %v", err)
	}
	defer mirrorSvc.Close()

	// 问题读写
	reader := issue.NewReader(gateway)
	actions := issue.NewActions(gateway, mirrorSvc, cfg.IsAdmin, func(issueId uint64, count int) {
		logger.Info("Issue %d reached confirmation quorum with %d confirmations", issueId, count)
	})

	// 启动事件监听
	eventMonitor, err := monitor.NewEventMonitor(chainManager, db)
	if err != nil {
		logger.Fatal("Failed to initialize event monitor: %v", err)
	}
	if err := eventMonitor.Start(); err != nil {
		logger.Fatal("Failed to start event monitor: %v", err)
	}
	defer eventMonitor.Stop()

	// 启动定时任务
	taskManager := task.Start(db, reader, cfg)
	defer taskManager.Stop()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(reader, actions, mirrorSvc, chainManager)

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

// initLogger 按配置初始化全局日志器
func initLogger(cfg config.LogConfig) {
	level := logger.ParseLogLevel(cfg.Level)

	var l *logger.Logger
	var err error
	if cfg.Output == "file" {
		l, err = logger.NewWithFileRotation(level, cfg.File)
	} else {
		l, err = logger.New(level)
	}
	if err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}

	logger.SetDefaultLogger(l)
}
