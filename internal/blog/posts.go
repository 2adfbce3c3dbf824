package blog

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	blogdb "github.com/nao1215/tarzan/internal/blog/db"
)

// postRequest は投稿の作成・置換リクエストのJSON構造。
type postRequest struct {
	// Title は投稿のタイトル。
	Title string `json:"title" binding:"required,max=200"`
	// Content は投稿の本文。
	Content string `json:"content" binding:"required"`
	// PubDate は公開日時。
	PubDate time.Time `json:"pub_date" binding:"required"`
}

// postPatchRequest は投稿の部分更新リクエストのJSON構造。
type postPatchRequest struct {
	Title   *string    `json:"title" binding:"omitempty,max=200"`
	Content *string    `json:"content"`
	PubDate *time.Time `json:"pub_date"`
}

// postResponse は投稿のJSONレスポンス構造。
type postResponse struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	PubDate string `json:"pub_date"`
}

// toPostResponse はDB行をJSONレスポンスに変換する。
func toPostResponse(p blogdb.Post) postResponse {
	return postResponse{
		ID:      p.ID,
		Title:   p.Title,
		Content: p.Content,
		PubDate: formatTime(p.PubDate),
	}
}

// handleListPosts は投稿一覧を返すハンドラを返す。
func (s *Server) handleListPosts() gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := s.queries.ListPosts(c.Request.Context())
		if err != nil {
			internalError(c, "投稿一覧の取得に失敗しました", err)
			return
		}

		resp := make([]postResponse, 0, len(posts))
		for _, p := range posts {
			resp = append(resp, toPostResponse(p))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// handleGetPost は投稿詳細を返すハンドラを返す。
func (s *Server) handleGetPost() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		post, err := s.queries.GetPost(c.Request.Context(), id)
		if errors.Is(err, sql.ErrNoRows) {
			errorResponse(c, http.StatusNotFound, "投稿が見つかりません")
			return
		}
		if err != nil {
			internalError(c, "投稿の取得に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, toPostResponse(post))
	}
}

// handleCreatePost は投稿を作成するハンドラを返す。
func (s *Server) handleCreatePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req postRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		id, err := s.queries.CreatePost(c.Request.Context(), blogdb.CreatePostParams{
			Title:   req.Title,
			Content: req.Content,
			PubDate: req.PubDate.UTC(),
		})
		if err != nil {
			internalError(c, "投稿の作成に失敗しました", err)
			return
		}

		post, err := s.queries.GetPost(c.Request.Context(), id)
		if err != nil {
			internalError(c, "作成した投稿の取得に失敗しました", err)
			return
		}
		c.JSON(http.StatusCreated, toPostResponse(post))
	}
}

// handleUpdatePost は投稿を更新するハンドラを返す。
// partialがtrueの場合は指定されたフィールドのみを更新する。
func (s *Server) handleUpdatePost(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		current, err := s.queries.GetPost(c.Request.Context(), id)
		if errors.Is(err, sql.ErrNoRows) {
			errorResponse(c, http.StatusNotFound, "投稿が見つかりません")
			return
		}
		if err != nil {
			internalError(c, "投稿の取得に失敗しました", err)
			return
		}

		params := blogdb.UpdatePostParams{
			ID:      id,
			Title:   current.Title,
			Content: current.Content,
			PubDate: current.PubDate,
		}
		if partial {
			var req postPatchRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				bindError(c, err)
				return
			}
			if req.Title != nil {
				params.Title = *req.Title
			}
			if req.Content != nil {
				params.Content = *req.Content
			}
			if req.PubDate != nil {
				params.PubDate = *req.PubDate
			}
			if params.Title == "" || params.Content == "" {
				validationError(c, emptyFields(map[string]string{"title": params.Title, "content": params.Content}))
				return
			}
		} else {
			var req postRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				bindError(c, err)
				return
			}
			params.Title = req.Title
			params.Content = req.Content
			params.PubDate = req.PubDate
		}
		params.PubDate = params.PubDate.UTC()

		if _, err := s.queries.UpdatePost(c.Request.Context(), params); err != nil {
			internalError(c, "投稿の更新に失敗しました", err)
			return
		}

		post, err := s.queries.GetPost(c.Request.Context(), id)
		if err != nil {
			internalError(c, "更新した投稿の取得に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, toPostResponse(post))
	}
}

// handleDeletePost は投稿を削除するハンドラを返す。
func (s *Server) handleDeletePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		n, err := s.queries.DeletePost(c.Request.Context(), id)
		if err != nil {
			internalError(c, "投稿の削除に失敗しました", err)
			return
		}
		if n == 0 {
			errorResponse(c, http.StatusNotFound, "投稿が見つかりません")
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// emptyFields は値が空のフィールドに必須エラーを設定したマップを返す。
func emptyFields(values map[string]string) map[string][]string {
	fields := make(map[string][]string)
	for name, v := range values {
		if v == "" {
			fields[name] = []string{"この項目は必須です"}
		}
	}
	return fields
}
