package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorHandler はハンドラがc.Errorで登録したエラーを処理するGinミドルウェアを返す。
// レスポンスが未送信の場合は500エラーを返す。送信済みの場合はログ出力のみ行う。
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}

		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, last.Err)
		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "内部サーバーエラーが発生しました",
		})
	}
}
