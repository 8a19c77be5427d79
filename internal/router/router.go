package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rishbCLN/civic-issue-reporting/internal/chain"
	"github.com/rishbCLN/civic-issue-reporting/internal/handler"
	"github.com/rishbCLN/civic-issue-reporting/internal/issue"
	"github.com/rishbCLN/civic-issue-reporting/internal/mirror"
)

func Setup(reader *issue.Reader, actions *issue.Actions, mirrorSvc *mirror.Service, chainManager *chain.Manager) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "civic-issue-reporting",
			"chain":   chainManager.GetHealthStatus(),
		})
	})

	// 元数据镜像接口，只写存储介质
	mirrorHandler := handler.NewMirrorHandler(mirrorSvc)
	api := r.Group("/api")
	{
		api.POST("/upload-to-ipfs", mirrorHandler.UploadToIPFS)
		api.POST("/update-issue-status", mirrorHandler.UpdateIssueStatus)
		api.POST("/update-issue-funding", mirrorHandler.UpdateIssueFunding)
	}

	// API版本组
	v1 := r.Group("/api/v1")
	{
		issueHandler := handler.NewIssueHandler(reader, actions)
		issues := v1.Group("/issues")
		{
			issues.POST("", issueHandler.ReportIssue)
			issues.GET("", issueHandler.ListIssues)
			issues.GET("/stats", issueHandler.GetStats)
			issues.GET("/:id", issueHandler.GetIssue)
			issues.GET("/:id/funding", issueHandler.GetUserFunding)
			issues.PUT("/:id/status", issueHandler.UpdateIssueStatus)
			issues.POST("/:id/confirm", issueHandler.ConfirmIssue)
			issues.POST("/:id/fund", issueHandler.FundIssue)
			issues.POST("/:id/withdraw", issueHandler.WithdrawFunds)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
