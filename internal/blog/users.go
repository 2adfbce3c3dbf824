package blog

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/tarzan/internal/account"
	blogdb "github.com/nao1215/tarzan/internal/blog/db"
)

// unusablePassword はパスワードログインできないユーザーのハッシュ値。
// bcryptのハッシュとして解釈できないため、どのパスワードとも一致しない。
const unusablePassword = "!"

// userRequest はユーザーの作成・置換リクエストのJSON構造。
type userRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"omitempty,max=254,email"`
	IsStaff  bool   `json:"is_staff"`
	// Password は作成時のみ使用する。省略した場合はパスワードログインできない。
	Password string `json:"password"`
}

// userPatchRequest はユーザーの部分更新リクエストのJSON構造。
type userPatchRequest struct {
	Username *string `json:"username" binding:"omitempty,max=150"`
	Email    *string `json:"email" binding:"omitempty,max=254,email"`
	IsStaff  *bool   `json:"is_staff"`
}

// userResponse はユーザーのJSONレスポンス構造。
type userResponse struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

// toUserResponse はDB行をJSONレスポンスに変換する。urlは詳細の絶対URLになる。
func toUserResponse(c *gin.Context, u blogdb.User) userResponse {
	return userResponse{
		URL:      absoluteURL(c, fmt.Sprintf("/api/users/%d/", u.ID)),
		Username: u.Username,
		Email:    u.Email,
		IsStaff:  u.IsStaff,
	}
}

// handleListUsers はユーザー一覧を返すハンドラを返す。
func (s *Server) handleListUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.queries.ListUsers(c.Request.Context())
		if err != nil {
			internalError(c, "ユーザー一覧の取得に失敗しました", err)
			return
		}

		resp := make([]userResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, toUserResponse(c, u))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// handleGetUser はユーザー詳細を返すハンドラを返す。
func (s *Server) handleGetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		user, err := s.queries.GetUser(c.Request.Context(), id)
		if errors.Is(err, sql.ErrNoRows) {
			errorResponse(c, http.StatusNotFound, "ユーザーが見つかりません")
			return
		}
		if err != nil {
			internalError(c, "ユーザーの取得に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, toUserResponse(c, user))
	}
}

// handleCreateUser はユーザーを作成するハンドラを返す。
func (s *Server) handleCreateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req userRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		if err := account.ValidateUsername(req.Username); err != nil {
			validationError(c, map[string][]string{"username": account.Messages(err)})
			return
		}

		hash := unusablePassword
		if req.Password != "" {
			attrs := account.UserAttributes{Username: req.Username, Email: req.Email}
			if err := account.ValidatePassword(req.Password, attrs); err != nil {
				validationError(c, map[string][]string{"password": account.Messages(err)})
				return
			}
			h, err := account.HashPassword(req.Password)
			if err != nil {
				internalError(c, "パスワードの処理に失敗しました", err)
				return
			}
			hash = h
		}

		id, err := s.queries.CreateUser(c.Request.Context(), blogdb.CreateUserParams{
			Username:     req.Username,
			PasswordHash: hash,
			Email:        req.Email,
			IsStaff:      req.IsStaff,
		})
		if isUniqueViolation(err) {
			validationError(c, map[string][]string{"username": {"このユーザー名は既に使用されています"}})
			return
		}
		if err != nil {
			internalError(c, "ユーザーの作成に失敗しました", err)
			return
		}

		user, err := s.queries.GetUser(c.Request.Context(), id)
		if err != nil {
			internalError(c, "作成したユーザーの取得に失敗しました", err)
			return
		}
		c.JSON(http.StatusCreated, toUserResponse(c, user))
	}
}

// handleUpdateUser はユーザーを更新するハンドラを返す。
// partialがtrueの場合は指定されたフィールドのみを更新する。
func (s *Server) handleUpdateUser(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		current, err := s.queries.GetUser(c.Request.Context(), id)
		if errors.Is(err, sql.ErrNoRows) {
			errorResponse(c, http.StatusNotFound, "ユーザーが見つかりません")
			return
		}
		if err != nil {
			internalError(c, "ユーザーの取得に失敗しました", err)
			return
		}

		params := blogdb.UpdateUserParams{
			ID:       id,
			Username: current.Username,
			Email:    current.Email,
			IsStaff:  current.IsStaff,
		}
		if partial {
			var req userPatchRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				bindError(c, err)
				return
			}
			if req.Username != nil {
				params.Username = *req.Username
			}
			if req.Email != nil {
				params.Email = *req.Email
			}
			if req.IsStaff != nil {
				params.IsStaff = *req.IsStaff
			}
		} else {
			var req userRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				bindError(c, err)
				return
			}
			params.Username = req.Username
			params.Email = req.Email
			params.IsStaff = req.IsStaff
		}
		if err := account.ValidateUsername(params.Username); err != nil {
			validationError(c, map[string][]string{"username": account.Messages(err)})
			return
		}

		_, err = s.queries.UpdateUser(c.Request.Context(), params)
		if isUniqueViolation(err) {
			validationError(c, map[string][]string{"username": {"このユーザー名は既に使用されています"}})
			return
		}
		if err != nil {
			internalError(c, "ユーザーの更新に失敗しました", err)
			return
		}

		user, err := s.queries.GetUser(c.Request.Context(), id)
		if err != nil {
			internalError(c, "更新したユーザーの取得に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, toUserResponse(c, user))
	}
}

// handleDeleteUser はユーザーを削除するハンドラを返す。
func (s *Server) handleDeleteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		n, err := s.queries.DeleteUser(c.Request.Context(), id)
		if err != nil {
			internalError(c, "ユーザーの削除に失敗しました", err)
			return
		}
		if n == 0 {
			errorResponse(c, http.StatusNotFound, "ユーザーが見つかりません")
			return
		}
		c.Status(http.StatusNoContent)
	}
}
