package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/tarzan/pkg/route"
)

// DefaultFallbackURL はルートが見つからない場合のデフォルトの転送先。
const DefaultFallbackURL = "/api/"

// RouteResolver はリクエストパスがルートテーブルに登録されているかを判定する。
// 一致するルートが無い場合は route.ErrNotFound を返す。
type RouteResolver interface {
	Resolve(path string) error
}

// ResolverFunc は関数をRouteResolverとして扱うためのアダプタ。
type ResolverFunc func(path string) error

// Resolve はf(path)を呼び出す。
func (f ResolverFunc) Resolve(path string) error {
	return f(path)
}

// RequestGate は解決できないパスへのリクエストをfallbackURLへ302でリダイレクトする
// Ginミドルウェアを返す。fallbackURLが空の場合は DefaultFallbackURL を使用する。
//
// 解決に成功した場合は後続のハンドラをそのまま実行し、レスポンスには手を加えない。
// route.ErrNotFound 以外の解決エラーはリダイレクトせず、c.Errorで
// エラーハンドリング層に委ねる。
func RequestGate(resolver RouteResolver, fallbackURL string) gin.HandlerFunc {
	if fallbackURL == "" {
		fallbackURL = DefaultFallbackURL
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path

		err := resolver.Resolve(path)
		if errors.Is(err, route.ErrNotFound) {
			c.Redirect(http.StatusFound, fallbackURL)
			c.Abort()
			return
		}
		if err != nil {
			_ = c.Error(fmt.Errorf("パスの解決に失敗: path=%q: %w", path, err))
			c.Abort()
			return
		}

		c.Next()
	}
}
