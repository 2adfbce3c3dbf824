package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery はハンドラのpanicを500エラーに変換するGinミドルウェアを返す。
// RequestIDより前に登録しても、panic時点で採番済みのリクエストIDをログと応答に含める。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			requestID := c.GetString("request_id")
			log.Printf("[PANIC] %s %s request_id=%s: %v\n%s", c.Request.Method, c.Request.URL.Path, requestID, r, debug.Stack())

			if c.Writer.Written() {
				c.Abort()
				return
			}
			body := gin.H{"error": "内部サーバーエラーが発生しました"}
			if requestID != "" {
				body["request_id"] = requestID
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()
		c.Next()
	}
}
