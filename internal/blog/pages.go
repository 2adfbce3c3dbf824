package blog

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// handleIndex はAPIルートを返すハンドラを返す。
// HTMLを要求するクライアントにはトップページを表示する。
func (s *Server) handleIndex() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
			user, ok, err := s.currentUser(c)
			if err != nil {
				_ = c.Error(err)
				return
			}
			c.HTML(http.StatusOK, "index.html", gin.H{"User": user, "LoggedIn": ok})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"users": absoluteURL(c, "/api/users/"),
			"posts": absoluteURL(c, "/api/posts/"),
		})
	}
}

// handleSwaggerUI はSwagger UIのページを返すハンドラを返す。
func (s *Server) handleSwaggerUI() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "swagger.html", gin.H{
			"Title":   s.apiDoc.Info.Title,
			"SpecURL": "/swagger.json",
		})
	}
}

// handleSwaggerJSON はSwaggerドキュメントをJSONで返すハンドラを返す。
func (s *Server) handleSwaggerJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := s.apiDoc.JSON()
		if err != nil {
			internalError(c, "APIドキュメントの生成に失敗しました", err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", b)
	}
}

// handleSwaggerYAML はSwaggerドキュメントをYAMLで返すハンドラを返す。
func (s *Server) handleSwaggerYAML() gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := s.apiDoc.YAML()
		if err != nil {
			internalError(c, "APIドキュメントの生成に失敗しました", err)
			return
		}
		c.Data(http.StatusOK, "application/yaml; charset=utf-8", b)
	}
}
