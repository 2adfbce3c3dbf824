package blog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/tarzan/internal/account"
	blogdb "github.com/nao1215/tarzan/internal/blog/db"
	"github.com/nao1215/tarzan/internal/config"
	"github.com/nao1215/tarzan/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testPassword はテストユーザー共通のパスワード。
const testPassword = "Tr0ub4dor&3x"

// testConfig はテスト用の設定を返す。
func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		DatabasePath:   ":memory:",
		SecretKey:      "test-secret-key-for-unit-tests",
		AllowedOrigins: []string{"http://localhost:3000"},
		RedirectURL:    "/api/",
		Session: config.SessionConfig{
			CookieName:   "my_session_cookie",
			CookieAge:    time.Hour,
			CookieSecure: true,
		},
		JWTTTL: time.Hour,
	}
}

// setupTestServer はインメモリSQLiteでテスト用のサーバーを構築する。
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	sqlDB, err := OpenDB(":memory:")
	if err != nil {
		t.Fatalf("インメモリDBの作成に失敗: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	n, err := Migrate(t.Context(), sqlDB)
	if err != nil {
		t.Fatalf("マイグレーションに失敗: %v", err)
	}
	if n != 2 {
		t.Fatalf("適用されたマイグレーション数 = %d, want 2", n)
	}

	s, err := New(testConfig(), sqlDB)
	if err != nil {
		t.Fatalf("サーバーの生成に失敗: %v", err)
	}
	return s
}

// createTestUser はテスト用にユーザーをDBに直接作成するヘルパー関数。
func createTestUser(t *testing.T, s *Server, username string, staff bool) blogdb.User {
	t.Helper()

	hash, err := account.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("パスワードのハッシュ化に失敗: %v", err)
	}
	id, err := s.queries.CreateUser(t.Context(), blogdb.CreateUserParams{
		Username:     username,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Email:        username + "@example.com",
		IsStaff:      staff,
	})
	if err != nil {
		t.Fatalf("テスト用ユーザーの作成に失敗: %v", err)
	}
	user, err := s.queries.GetUser(t.Context(), id)
	if err != nil {
		t.Fatalf("テスト用ユーザーの取得に失敗: %v", err)
	}
	return user
}

// tokenFor はユーザーのJWTを発行するヘルパー関数。
func tokenFor(t *testing.T, s *Server, u blogdb.User) string {
	t.Helper()

	token, err := middleware.GenerateJWT(s.cfg.SecretKey, u.ID, u.Username, time.Hour)
	if err != nil {
		t.Fatalf("JWT生成に失敗: %v", err)
	}
	return token
}

// requestOption はテストリクエストを加工する関数。
type requestOption func(*http.Request)

func withToken(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookie(c *http.Cookie) requestOption {
	return func(r *http.Request) { r.AddCookie(c) }
}

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// doRequest はテスト用のJSONリクエストを実行し、レスポンスを返すヘルパー関数。
func doRequest(s *Server, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	var reqBody *bytes.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

// postForm はフォーム送信を実行し、レスポンスを返すヘルパー関数。
func postForm(s *Server, path string, values url.Values, opts ...requestOption) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, opt := range opts {
		opt(req)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

// parseJSON はレスポンスボディをJSONとしてパースするヘルパー関数。
func parseJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("レスポンスのJSONパースに失敗: %v (body=%s)", err, w.Body.String())
	}
	return v
}

// sessionCookie はレスポンスからセッションCookieを取り出す。
func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == "my_session_cookie" {
			return c
		}
	}
	t.Fatalf("セッションCookieが設定されていない: %v", w.Header().Values("Set-Cookie"))
	return nil
}

func TestRequestGateIntegration(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)

	tests := []struct {
		name         string
		method       string
		path         string
		wantStatus   int
		wantLocation string
	}{
		{name: "未登録パスは/api/へリダイレクト", method: http.MethodGet, path: "/invalid/", wantStatus: http.StatusFound, wantLocation: "/api/"},
		{name: "深い未登録パスも/api/へリダイレクト", method: http.MethodGet, path: "/nested/not/found", wantStatus: http.StatusFound, wantLocation: "/api/"},
		{name: "末尾スラッシュなしの/apiはリダイレクト", method: http.MethodGet, path: "/api", wantStatus: http.StatusFound, wantLocation: "/api/"},
		{name: "末尾スラッシュなしの投稿一覧はリダイレクト", method: http.MethodGet, path: "/api/posts", wantStatus: http.StatusFound, wantLocation: "/api/"},
		{name: "未登録パスへのPOSTもリダイレクト", method: http.MethodPost, path: "/invalid/", wantStatus: http.StatusFound, wantLocation: "/api/"},
		{name: "APIルートはそのまま処理される", method: http.MethodGet, path: "/api/", wantStatus: http.StatusOK},
		{name: "投稿一覧はそのまま処理される", method: http.MethodGet, path: "/api/posts/", wantStatus: http.StatusOK},
		{name: "パラメータ付きルートはハンドラが404を返す", method: http.MethodGet, path: "/api/posts/abc/", wantStatus: http.StatusNotFound},
		{name: "登録済みパスへの未対応メソッドは405", method: http.MethodDelete, path: "/health", wantStatus: http.StatusMethodNotAllowed},
		{name: "ヘルスチェック", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := doRequest(s, tt.method, tt.path, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("ステータスコード = %d, want %d (body=%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantLocation != "" {
				if got := w.Header().Get("Location"); got != tt.wantLocation {
					t.Errorf("Location = %q, want %q", got, tt.wantLocation)
				}
			}
		})
	}

	t.Run("リダイレクト先は再リダイレクトされないこと", func(t *testing.T) {
		t.Parallel()

		first := doRequest(s, http.MethodGet, "/invalid/", nil)
		second := doRequest(s, http.MethodGet, first.Header().Get("Location"), nil)
		if second.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", second.Code, http.StatusOK)
		}
	})
}

func TestAPIRoot(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)

	t.Run("JSONでリソースの絶対URLを返すこと", func(t *testing.T) {
		t.Parallel()

		w := doRequest(s, http.MethodGet, "/api/", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		got := parseJSON[map[string]string](t, w)
		if got["posts"] != "http://example.com/api/posts/" {
			t.Errorf("posts = %q", got["posts"])
		}
		if got["users"] != "http://example.com/api/users/" {
			t.Errorf("users = %q", got["users"])
		}
	})

	t.Run("HTMLを要求するとトップページを返すこと", func(t *testing.T) {
		t.Parallel()

		w := doRequest(s, http.MethodGet, "/api/", nil, withHeader("Accept", "text/html"))
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if !strings.Contains(w.Body.String(), "<h1>Tarzan</h1>") {
			t.Errorf("トップページが表示されない: %s", w.Body.String())
		}
	})

	t.Run("セキュリティヘッダーが付与されること", func(t *testing.T) {
		t.Parallel()

		w := doRequest(s, http.MethodGet, "/api/", nil)
		if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
			t.Errorf("X-Frame-Options = %q, want %q", got, "DENY")
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Error("X-Request-IDが付与されていない")
		}
	})
}

func TestCurrentUserLookupFailure(t *testing.T) {
	t.Parallel()

	paths := []struct {
		name string
		path string
	}{
		{name: "トップページ", path: "/api/"},
		{name: "プロフィール", path: "/api/profile/"},
	}

	for _, tt := range paths {
		t.Run(tt.name+"はDB障害時に500を返すこと", func(t *testing.T) {
			t.Parallel()

			s := setupTestServer(t)
			token := tokenFor(t, s, createTestUser(t, s, "alice", false))
			s.db.Close()

			w := doRequest(s, http.MethodGet, tt.path, nil, withToken(token), withHeader("Accept", "text/html"))
			if w.Code != http.StatusInternalServerError {
				t.Errorf("ステータスコード = %d, want %d (body=%s)", w.Code, http.StatusInternalServerError, w.Body.String())
			}
		})
	}
}

func TestPosts(t *testing.T) {
	t.Parallel()

	t.Run("匿名ユーザーがサンプル投稿を一覧できること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		w := doRequest(s, http.MethodGet, "/api/posts/", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}

		posts := parseJSON[[]postResponse](t, w)
		if len(posts) != 5 {
			t.Fatalf("投稿数 = %d, want 5", len(posts))
		}
		if posts[0].Title != "Welcome to Tarzan" {
			t.Errorf("Title = %q, want %q", posts[0].Title, "Welcome to Tarzan")
		}
		if posts[0].PubDate != "2023-09-01T09:00:00Z" {
			t.Errorf("PubDate = %q, want %q", posts[0].PubDate, "2023-09-01T09:00:00Z")
		}
	})

	t.Run("匿名ユーザーが投稿詳細を取得できること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		w := doRequest(s, http.MethodGet, "/api/posts/2/", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if got := parseJSON[postResponse](t, w); got.ID != 2 {
			t.Errorf("ID = %d, want 2", got.ID)
		}
	})

	t.Run("存在しない投稿は404を返すこと", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		w := doRequest(s, http.MethodGet, "/api/posts/999/", nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("書き込み権限", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		staff := createTestUser(t, s, "staff", true)
		member := createTestUser(t, s, "member", false)
		body := map[string]any{"title": "New", "content": "Body", "pub_date": "2024-01-02T03:04:05Z"}

		tests := []struct {
			name       string
			opts       []requestOption
			wantStatus int
		}{
			{name: "匿名ユーザーは401", wantStatus: http.StatusUnauthorized},
			{name: "一般ユーザーは403", opts: []requestOption{withToken(tokenFor(t, s, member))}, wantStatus: http.StatusForbidden},
			{name: "スタッフは201", opts: []requestOption{withToken(tokenFor(t, s, staff))}, wantStatus: http.StatusCreated},
		}
		for _, tt := range tests {
			w := doRequest(s, http.MethodPost, "/api/posts/", body, tt.opts...)
			if w.Code != tt.wantStatus {
				t.Errorf("%s: ステータスコード = %d, want %d (body=%s)", tt.name, w.Code, tt.wantStatus, w.Body.String())
			}
		}
	})

	t.Run("スタッフが投稿を作成・更新・削除できること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := tokenFor(t, s, createTestUser(t, s, "staff", true))

		w := doRequest(s, http.MethodPost, "/api/posts/", map[string]any{
			"title": "Hello", "content": "World", "pub_date": "2024-01-02T03:04:05Z",
		}, withToken(token))
		if w.Code != http.StatusCreated {
			t.Fatalf("作成: ステータスコード = %d, want %d (body=%s)", w.Code, http.StatusCreated, w.Body.String())
		}
		created := parseJSON[postResponse](t, w)
		if created.Title != "Hello" || created.PubDate != "2024-01-02T03:04:05Z" {
			t.Errorf("作成結果 = %+v", created)
		}
		detail := "/api/posts/" + jsonNumber(created.ID) + "/"

		w = doRequest(s, http.MethodPut, detail, map[string]any{
			"title": "Hello again", "content": "Replaced", "pub_date": "2024-02-01T00:00:00Z",
		}, withToken(token))
		if w.Code != http.StatusOK {
			t.Fatalf("置換: ステータスコード = %d, want %d (body=%s)", w.Code, http.StatusOK, w.Body.String())
		}
		if got := parseJSON[postResponse](t, w); got.Content != "Replaced" {
			t.Errorf("Content = %q, want %q", got.Content, "Replaced")
		}

		w = doRequest(s, http.MethodPatch, detail, map[string]any{"title": "Patched"}, withToken(token))
		if w.Code != http.StatusOK {
			t.Fatalf("部分更新: ステータスコード = %d, want %d (body=%s)", w.Code, http.StatusOK, w.Body.String())
		}
		patched := parseJSON[postResponse](t, w)
		if patched.Title != "Patched" || patched.Content != "Replaced" {
			t.Errorf("部分更新結果 = %+v", patched)
		}

		w = doRequest(s, http.MethodDelete, detail, nil, withToken(token))
		if w.Code != http.StatusNoContent {
			t.Fatalf("削除: ステータスコード = %d, want %d", w.Code, http.StatusNoContent)
		}
		w = doRequest(s, http.MethodGet, detail, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("削除後の取得: ステータスコード = %d, want %d", w.Code, http.StatusNotFound)
		}
		w = doRequest(s, http.MethodDelete, detail, nil, withToken(token))
		if w.Code != http.StatusNotFound {
			t.Errorf("再削除: ステータスコード = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("入力値が不正な場合はフィールドごとのエラーを返すこと", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := tokenFor(t, s, createTestUser(t, s, "staff", true))

		w := doRequest(s, http.MethodPost, "/api/posts/", map[string]any{
			"title": strings.Repeat("a", 201), "pub_date": "2024-01-02T03:04:05Z",
		}, withToken(token))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusBadRequest)
		}
		got := parseJSON[struct {
			Error  string              `json:"error"`
			Fields map[string][]string `json:"fields"`
		}](t, w)
		if len(got.Fields["title"]) == 0 {
			t.Errorf("titleのエラーがない: %+v", got)
		}
		if len(got.Fields["content"]) == 0 {
			t.Errorf("contentのエラーがない: %+v", got)
		}
	})
}

func TestUsers(t *testing.T) {
	t.Parallel()

	t.Run("匿名ユーザーは401を返すこと", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		for _, path := range []string{"/api/users/", "/api/users/1/"} {
			w := doRequest(s, http.MethodGet, path, nil)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("%s: ステータスコード = %d, want %d", path, w.Code, http.StatusUnauthorized)
			}
		}
	})

	t.Run("不正なトークンは401を返すこと", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		w := doRequest(s, http.MethodGet, "/api/users/", nil, withToken("not-a-jwt"))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("削除されたユーザーのトークンは401を返すこと", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		member := createTestUser(t, s, "member", false)
		token := tokenFor(t, s, member)

		if _, err := s.queries.DeleteUser(t.Context(), member.ID); err != nil {
			t.Fatalf("ユーザーの削除に失敗: %v", err)
		}

		w := doRequest(s, http.MethodGet, "/api/users/", nil, withToken(token))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d (body=%s)", w.Code, http.StatusUnauthorized, w.Body.String())
		}
	})

	t.Run("無効化されたユーザーのトークンは401を返すこと", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		member := createTestUser(t, s, "member", false)
		token := tokenFor(t, s, member)

		if _, err := s.db.ExecContext(t.Context(), "UPDATE users SET is_active = 0 WHERE id = ?", member.ID); err != nil {
			t.Fatalf("ユーザーの無効化に失敗: %v", err)
		}

		w := doRequest(s, http.MethodGet, "/api/users/"+jsonNumber(member.ID)+"/", nil, withToken(token))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d (body=%s)", w.Code, http.StatusUnauthorized, w.Body.String())
		}
	})

	t.Run("認証済みユーザーは一覧と詳細を取得できること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		member := createTestUser(t, s, "member", false)
		token := tokenFor(t, s, member)

		w := doRequest(s, http.MethodGet, "/api/users/", nil, withToken(token))
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		users := parseJSON[[]userResponse](t, w)
		if len(users) != 1 {
			t.Fatalf("ユーザー数 = %d, want 1", len(users))
		}
		want := userResponse{
			URL:      "http://example.com/api/users/" + jsonNumber(member.ID) + "/",
			Username: "member",
			Email:    "member@example.com",
			IsStaff:  false,
		}
		if users[0] != want {
			t.Errorf("users[0] = %+v, want %+v", users[0], want)
		}

		w = doRequest(s, http.MethodGet, "/api/users/"+jsonNumber(member.ID)+"/", nil,
			withToken(token), withHeader("X-Forwarded-Proto", "https"))
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if got := parseJSON[userResponse](t, w); !strings.HasPrefix(got.URL, "https://") {
			t.Errorf("URL = %q, want https://...", got.URL)
		}
	})

	t.Run("一般ユーザーは書き込めないこと", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := tokenFor(t, s, createTestUser(t, s, "member", false))

		w := doRequest(s, http.MethodPost, "/api/users/", map[string]any{"username": "eve"}, withToken(token))
		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusForbidden)
		}
	})

	t.Run("スタッフはユーザーを作成・更新・削除できること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := tokenFor(t, s, createTestUser(t, s, "staff", true))

		w := doRequest(s, http.MethodPost, "/api/users/", map[string]any{
			"username": "bob", "email": "bob@example.com", "password": "correct-horse-battery",
		}, withToken(token))
		if w.Code != http.StatusCreated {
			t.Fatalf("作成: ステータスコード = %d, want %d (body=%s)", w.Code, http.StatusCreated, w.Body.String())
		}
		created := parseJSON[userResponse](t, w)
		detail := strings.TrimPrefix(created.URL, "http://example.com")

		w = doRequest(s, http.MethodPost, "/api/users/", map[string]any{"username": "bob"}, withToken(token))
		if w.Code != http.StatusBadRequest {
			t.Errorf("重複作成: ステータスコード = %d, want %d", w.Code, http.StatusBadRequest)
		}

		w = doRequest(s, http.MethodPatch, detail, map[string]any{"is_staff": true}, withToken(token))
		if w.Code != http.StatusOK {
			t.Fatalf("部分更新: ステータスコード = %d, want %d (body=%s)", w.Code, http.StatusOK, w.Body.String())
		}
		if got := parseJSON[userResponse](t, w); !got.IsStaff || got.Email != "bob@example.com" {
			t.Errorf("部分更新結果 = %+v", got)
		}

		w = doRequest(s, http.MethodPut, detail, map[string]any{"username": "bob$"}, withToken(token))
		if w.Code != http.StatusBadRequest {
			t.Errorf("不正なユーザー名: ステータスコード = %d, want %d", w.Code, http.StatusBadRequest)
		}

		w = doRequest(s, http.MethodDelete, detail, nil, withToken(token))
		if w.Code != http.StatusNoContent {
			t.Fatalf("削除: ステータスコード = %d, want %d", w.Code, http.StatusNoContent)
		}
	})

	t.Run("100文字のパスワードでの作成は400を返すこと", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := tokenFor(t, s, createTestUser(t, s, "staff", true))

		w := doRequest(s, http.MethodPost, "/api/users/", map[string]any{
			"username": "carol", "password": strings.Repeat("Zq7!", 25),
		}, withToken(token))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("ステータスコード = %d, want %d (body=%s)", w.Code, http.StatusBadRequest, w.Body.String())
		}
		body := parseJSON[struct {
			Fields map[string][]string `json:"fields"`
		}](t, w)
		if len(body.Fields["password"]) == 0 {
			t.Errorf("passwordのフィールドエラーがない: %s", w.Body.String())
		}
	})

	t.Run("弱いパスワードでの作成は400を返すこと", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := tokenFor(t, s, createTestUser(t, s, "staff", true))

		w := doRequest(s, http.MethodPost, "/api/users/", map[string]any{
			"username": "carol", "password": "12345678",
		}, withToken(token))
		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestSwagger(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)

	t.Run("JSONドキュメント", func(t *testing.T) {
		t.Parallel()

		w := doRequest(s, http.MethodGet, "/swagger.json", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		doc := parseJSON[map[string]any](t, w)
		if doc["swagger"] != "2.0" {
			t.Errorf("swagger = %v, want 2.0", doc["swagger"])
		}
		paths, _ := doc["paths"].(map[string]any)
		for _, p := range []string{"/posts/", "/posts/{id}/", "/users/", "/users/{id}/", "/token/"} {
			if _, ok := paths[p]; !ok {
				t.Errorf("paths に %s がない", p)
			}
		}
	})

	t.Run("YAMLドキュメント", func(t *testing.T) {
		t.Parallel()

		w := doRequest(s, http.MethodGet, "/swagger.yaml", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/yaml") {
			t.Errorf("Content-Type = %q", ct)
		}
		if !strings.Contains(w.Body.String(), "title: Tarzan API") {
			t.Errorf("YAMLにタイトルが含まれない: %s", w.Body.String())
		}
	})

	t.Run("Swagger UI", func(t *testing.T) {
		t.Parallel()

		w := doRequest(s, http.MethodGet, "/swagger/", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if !strings.Contains(w.Body.String(), "swagger-ui") {
			t.Error("Swagger UIのページではない")
		}
	})
}

// jsonNumber はIDを文字列に変換する。
func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
