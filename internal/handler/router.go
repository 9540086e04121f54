package handler

import (
	"bankdemo/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	// 创建处理器
	h := NewHandler(db, rdb, cfg)

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 认证相关
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Signup)
			auth.POST("/login", h.Login)
			// 登出不要求会话仍然有效：令牌缺失或已失效视为已登出
			auth.POST("/logout", h.Logout)
		}

		// 需要有效会话的接口
		authed := api.Group("")
		authed.Use(AuthMiddleware(h.sessionService))
		{
			account := authed.Group("/account")
			{
				account.POST("/create", h.CreateAccount)
				account.GET("/list", h.ListAccounts)
			}

			deposit := authed.Group("/deposit")
			{
				deposit.POST("/execute", h.Deposit)
			}

			transaction := authed.Group("/transaction")
			{
				transaction.GET("/history", h.History)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
