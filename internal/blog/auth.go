package blog

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/tarzan/internal/account"
	blogdb "github.com/nao1215/tarzan/internal/blog/db"
	"github.com/nao1215/tarzan/pkg/middleware"
)

const (
	// contextKeyUser はGinコンテキストに認証済みユーザーを格納するキー。
	contextKeyUser = "current_user"
	// loginURL はログインページのパス。
	loginURL = "/api/login/"
	// profileURL はログイン後の既定の遷移先。
	profileURL = "/api/profile/"
)

// hashToken はセッショントークンのSHA-256ハッシュを16進文字列で返す。
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// sessionAuth はセッションCookieからユーザーを認証するGinミドルウェアを返す。
// JWTで既に認証済みの場合やCookieが無い場合は何もしない。
func (s *Server) sessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := middleware.GetUserID(c); ok {
			c.Next()
			return
		}

		token, err := c.Cookie(s.cfg.Session.CookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := s.queries.GetSessionUser(c.Request.Context(), blogdb.GetSessionUserParams{
			TokenHash: hashToken(token),
			ExpiresAt: now(),
		})
		switch {
		case err == nil && user.IsActive:
			middleware.SetUserID(c, user.ID)
			c.Set(contextKeyUser, user)
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			log.Printf("[Session] セッションの取得に失敗: %v", err)
		}
		c.Next()
	}
}

// currentUser は認証済みユーザーを返す。認証されていない場合はfalseを返す。
func (s *Server) currentUser(c *gin.Context) (blogdb.User, bool, error) {
	if v, ok := c.Get(contextKeyUser); ok {
		if u, ok := v.(blogdb.User); ok {
			return u, true, nil
		}
	}

	id, ok := middleware.GetUserID(c)
	if !ok {
		return blogdb.User{}, false, nil
	}
	user, err := s.queries.GetUser(c.Request.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return blogdb.User{}, false, nil
	}
	if err != nil {
		return blogdb.User{}, false, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	if !user.IsActive {
		return blogdb.User{}, false, nil
	}
	c.Set(contextKeyUser, user)
	return user, true, nil
}

// hasActiveUser は認証済みユーザーが存在し、有効であるかどうかを返す。
// 削除・無効化されたユーザーのJWTはここで拒否される。
func (s *Server) hasActiveUser(c *gin.Context) (bool, error) {
	_, ok, err := s.currentUser(c)
	return ok, err
}

// requireStaff はスタッフユーザー以外の書き込みを拒否するGinミドルウェアを返す。
// 未認証の場合は401、スタッフでない場合は403を返す。
func (s *Server) requireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok, err := s.currentUser(c)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "認証情報が提供されていません"})
			return
		}
		if !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "この操作を実行する権限がありません"})
			return
		}
		c.Next()
	}
}

// requireLogin は未ログインの場合にログインページへリダイレクトするGinミドルウェアを返す。
// 元のパスは next クエリパラメータで引き継ぐ。
func (s *Server) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ok, err := s.currentUser(c)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if !ok {
			next := strings.ReplaceAll(url.QueryEscape(c.Request.URL.RequestURI()), "%2F", "/")
			c.Redirect(http.StatusFound, loginURL+"?next="+next)
			c.Abort()
			return
		}
		c.Next()
	}
}

// login はユーザーのセッションを作成し、セッションCookieを設定する。
func (s *Server) login(c *gin.Context, user blogdb.User) error {
	token := rand.Text()
	if err := s.queries.CreateSession(c.Request.Context(), blogdb.CreateSessionParams{
		TokenHash: hashToken(token),
		UserID:    user.ID,
		ExpiresAt: now().Add(s.cfg.Session.CookieAge),
	}); err != nil {
		return fmt.Errorf("セッションの作成に失敗: %w", err)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.Session.CookieName, token, int(s.cfg.Session.CookieAge.Seconds()), "/", "", s.cfg.Session.CookieSecure, true)
	log.Printf("[Session] ログインしました: user_id=%d", user.ID)
	return nil
}

// safeNext はリダイレクト先として安全なサイト内パスのみを返す。
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return profileURL
	}
	return next
}

// loginForm はログインフォームの入力値。
type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

// handleLoginPage はログインページを表示するハンドラを返す。
func (s *Server) handleLoginPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "login.html", gin.H{"Next": c.Query("next")})
	}
}

// handleLogin はログインフォームを処理するハンドラを返す。
// 成功時はセッションを作成し next（無ければプロフィール）へリダイレクトする。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form loginForm
		_ = c.ShouldBind(&form)

		user, err := s.authenticate(c, form.Username, form.Password)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if user == nil {
			c.HTML(http.StatusOK, "login.html", gin.H{
				"Next":     form.Next,
				"Username": form.Username,
				"Error":    "ユーザー名またはパスワードが正しくありません",
			})
			return
		}

		if err := s.login(c, *user); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Redirect(http.StatusFound, safeNext(form.Next))
	}
}

// authenticate はユーザー名とパスワードを検証する。
// 一致しない場合は (nil, nil) を返す。
func (s *Server) authenticate(c *gin.Context, username, password string) (*blogdb.User, error) {
	if username == "" || password == "" {
		return nil, nil
	}
	user, err := s.queries.GetUserByUsername(c.Request.Context(), username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	if !user.IsActive || !account.CheckPassword(user.PasswordHash, password) {
		return nil, nil
	}
	return &user, nil
}

// handleLogout はセッションを破棄してログアウトページを表示するハンドラを返す。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(s.cfg.Session.CookieName); err == nil && token != "" {
			if err := s.queries.DeleteSession(c.Request.Context(), hashToken(token)); err != nil {
				log.Printf("[Session] セッションの削除に失敗: %v", err)
			}
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(s.cfg.Session.CookieName, "", -1, "/", "", s.cfg.Session.CookieSecure, true)
		c.HTML(http.StatusOK, "logout.html", gin.H{"LoginURL": loginURL})
	}
}

// handleSignupPage はサインアップページを表示するハンドラを返す。
func (s *Server) handleSignupPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "signup.html", gin.H{
			"Form":   account.SignupForm{},
			"Errors": account.FieldErrors{},
		})
	}
}

// handleSignup はサインアップフォームを処理するハンドラを返す。
// 成功時はユーザーを作成してログインし、プロフィールへリダイレクトする。
func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form account.SignupForm
		_ = c.ShouldBind(&form)

		errs, err := form.Validate(func(username string) (bool, error) {
			n, err := s.queries.UsernameExists(c.Request.Context(), username)
			return n != 0, err
		})
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		var user blogdb.User
		if errs == nil {
			user, errs, err = s.createAccount(c, form)
			if err != nil {
				_ = c.Error(err)
				c.Abort()
				return
			}
		}
		if errs != nil {
			form.Password = ""
			c.HTML(http.StatusOK, "signup.html", gin.H{"Form": form, "Errors": errs})
			return
		}

		if err := s.login(c, user); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Redirect(http.StatusFound, profileURL)
	}
}

// createAccount は検証済みのフォームからユーザーを作成する。
// ユーザー名が同時に登録された場合はフィールドエラーを返す。
func (s *Server) createAccount(c *gin.Context, form account.SignupForm) (blogdb.User, account.FieldErrors, error) {
	hash, err := account.HashPassword(form.Password)
	if err != nil {
		return blogdb.User{}, nil, err
	}

	id, err := s.queries.CreateUser(c.Request.Context(), blogdb.CreateUserParams{
		Username:     form.Username,
		PasswordHash: hash,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
	})
	if isUniqueViolation(err) {
		errs := account.FieldErrors{}
		errs.Add("username", "このユーザー名は既に使用されています。別のユーザー名を選んでください")
		return blogdb.User{}, errs, nil
	}
	if err != nil {
		return blogdb.User{}, nil, fmt.Errorf("ユーザーの作成に失敗: %w", err)
	}

	user, err := s.queries.GetUser(c.Request.Context(), id)
	if err != nil {
		return blogdb.User{}, nil, fmt.Errorf("作成したユーザーの取得に失敗: %w", err)
	}
	log.Printf("[Account] ユーザーを登録しました: user_id=%d username=%s", user.ID, user.Username)
	return user, nil, nil
}

// handleProfile はログイン中のユーザーのプロフィールを表示するハンドラを返す。
func (s *Server) handleProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, err := s.currentUser(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.HTML(http.StatusOK, "profile.html", gin.H{"User": user})
	}
}

// tokenRequest はトークン発行リクエストのJSON構造。
type tokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleToken はユーザー名とパスワードからJWTを発行するハンドラを返す。
func (s *Server) handleToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		user, err := s.authenticate(c, req.Username, req.Password)
		if err != nil {
			internalError(c, "認証に失敗しました", err)
			return
		}
		if user == nil {
			errorResponse(c, http.StatusUnauthorized, "ユーザー名またはパスワードが正しくありません")
			return
		}

		token, err := middleware.GenerateJWT(s.cfg.SecretKey, user.ID, user.Username, s.cfg.JWTTTL)
		if err != nil {
			internalError(c, "トークン生成に失敗しました", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_in": int64(s.cfg.JWTTTL.Seconds()),
		})
	}
}
