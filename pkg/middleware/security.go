package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// headerKeyRequestID はリクエストを識別するためのHTTPヘッダーキー。
const headerKeyRequestID = "X-Request-ID"

// SecurityHeaders はクリックジャッキング対策などのセキュリティヘッダーを付与するGinミドルウェアを返す。
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "same-origin")
		c.Next()
	}
}

// RequestID はリクエストIDをレスポンスヘッダーに設定するGinミドルウェアを返す。
// クライアントがX-Request-IDを送信した場合はその値を引き継ぐ。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerKeyRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(headerKeyRequestID, id)
		c.Next()
	}
}
