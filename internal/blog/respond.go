package blog

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// errorResponse はエラーレスポンスを返す。
func errorResponse(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// internalError は500エラーを返し、原因をログに出力する。
func internalError(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	log.Printf("[Blog] %s: %v", msg, err)
}

// validationError はフィールドごとのエラーを含む400エラーを返す。
func validationError(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  "入力値が不正です",
		"fields": fields,
	})
}

// bindError はリクエストのバインドに失敗したときのレスポンスを返す。
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errorResponse(c, http.StatusBadRequest, fmt.Sprintf("リクエストが不正です: %v", err))
		return
	}

	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], validationMessage(fe))
	}
	validationError(c, fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "この項目は必須です"
	case "max":
		return fmt.Sprintf("%s文字以下で入力してください", fe.Param())
	case "email":
		return "有効なメールアドレスを入力してください"
	default:
		return "入力値が不正です"
	}
}

// parseID はパスパラメータのIDを解析する。解析できない場合は404を返しfalseを返す。
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorResponse(c, http.StatusNotFound, "見つかりません")
		return 0, false
	}
	return id, true
}

// absoluteURL はリクエストのホストを基準にした絶対URLを返す。
func absoluteURL(c *gin.Context, path string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, path)
}

// now はDBに保存する現在時刻を返す。
// 文字列比較で大小が決まるよう、UTCかつ秒単位に揃える。
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// formatTime は時刻をRFC3339形式で返す。
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// isUniqueViolation はUNIQUE制約違反かどうかを返す。
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
