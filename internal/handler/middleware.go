package handler

import (
	"log"
	"strings"
	"time"

	"bankdemo/internal/service"
	"bankdemo/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName 会话凭证 cookie 名
	SessionCookieName = "session_token"

	ctxKeyOwnerID = "owner_id"
	ctxKeyToken   = "session_token"
)

// extractToken 提取会话令牌：cookie 优先，其次 Authorization: Bearer
func extractToken(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// AuthMiddleware 会话校验中间件
// 校验通过后把用户ID放入请求上下文；过期判断带安全缓冲，见 SessionService.Validate
func AuthMiddleware(sessionService *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)

		session, err := sessionService.Validate(c.Request.Context(), token, time.Now())
		if err != nil {
			response.Unauthorized(c, "会话无效或已过期")
			c.Abort()
			return
		}

		c.Set(ctxKeyOwnerID, session.OwnerID)
		c.Set(ctxKeyToken, token)
		c.Next()
	}
}

// LoggerMiddleware 日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// 处理请求
		c.Next()

		// 记录日志
		latency := time.Since(start)
		status := c.Writer.Status()

		if query != "" {
			path = path + "?" + query
		}

		log.Printf("[HTTP] %d | %13v | %15s | %-7s %s",
			status,
			latency,
			c.ClientIP(),
			c.Request.Method,
			path,
		)
	}
}

// RecoveryMiddleware 恢复中间件，防止 panic 导致服务崩溃
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %v", err)
				c.AbortWithStatusJSON(500, gin.H{
					"code":    500,
					"message": "服务器内部错误",
				})
			}
		}()
		c.Next()
	}
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
