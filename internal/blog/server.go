package blog

import (
	"context"
	"database/sql"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/nao1215/tarzan/internal/account"
	"github.com/nao1215/tarzan/internal/apidoc"
	blogdb "github.com/nao1215/tarzan/internal/blog/db"
	"github.com/nao1215/tarzan/internal/config"
	"github.com/nao1215/tarzan/pkg/middleware"
	"github.com/nao1215/tarzan/pkg/route"
)

// Server はブログAPIサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はアプリケーション設定。
	cfg *config.Config
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *blogdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// routes はルート解決ゲートが参照するルートテーブル。
	routes *route.Table
	// apiDoc は登録済みルートから生成したSwaggerドキュメント。
	apiDoc *apidoc.Document
}

// NewServer はデータベースを開き、マイグレーションを適用してサーバーを生成する。
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	sqlDB, err := OpenDB(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if _, err := Migrate(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	s, err := New(cfg, sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// New はマイグレーション済みのデータベース接続からサーバーを生成する。
func New(cfg *config.Config, sqlDB *sql.DB) (*Server, error) {
	registerJSONTagNames()

	project, err := apidoc.LoadProject(apidoc.ProjectFS, apidoc.ProjectFile)
	if err != nil {
		return nil, fmt.Errorf("プロジェクト情報の読み込みに失敗: %w", err)
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	// 末尾スラッシュの補正はルート解決ゲートに任せる
	router.RedirectTrailingSlash = false
	router.HandleMethodNotAllowed = true
	router.SetHTMLTemplate(template.Must(
		template.New("").Funcs(template.FuncMap{"label": account.LabelInput}).ParseFS(templatesFS, "templates/*.html"),
	))

	s := &Server{
		router:  router,
		cfg:     cfg,
		queries: blogdb.New(sqlDB),
		db:      sqlDB,
		routes:  route.NewTable(nil),
	}

	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RequestGate(s.routes, cfg.RedirectURL))
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.JWTAuth(cfg.SecretKey))
	router.Use(s.sessionAuth())

	s.setupRoutes()

	routes := router.Routes()
	s.routes.Load(routes)
	s.apiDoc = apidoc.Build(project, "/api/", routes)
	log.Printf("[Blog] %d件のルートを登録しました", s.routes.Len())

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(s.cfg.Addr())
}

// Handler はサーバーのHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		// APIルート（HTMLを要求された場合はトップページ）
		api.GET("/", s.handleIndex())

		posts := api.Group("/posts")
		{
			posts.GET("/", s.handleListPosts())
			posts.POST("/", s.requireStaff(), s.handleCreatePost())
			posts.GET("/:id/", s.handleGetPost())
			posts.PUT("/:id/", s.requireStaff(), s.handleUpdatePost(false))
			posts.PATCH("/:id/", s.requireStaff(), s.handleUpdatePost(true))
			posts.DELETE("/:id/", s.requireStaff(), s.handleDeletePost())
		}

		users := api.Group("/users")
		users.Use(middleware.RequireAuth(s.hasActiveUser))
		{
			users.GET("/", s.handleListUsers())
			users.POST("/", s.requireStaff(), s.handleCreateUser())
			users.GET("/:id/", s.handleGetUser())
			users.PUT("/:id/", s.requireStaff(), s.handleUpdateUser(false))
			users.PATCH("/:id/", s.requireStaff(), s.handleUpdateUser(true))
			users.DELETE("/:id/", s.requireStaff(), s.handleDeleteUser())
		}

		api.GET("/signup/", s.handleSignupPage())
		api.POST("/signup/", s.handleSignup())
		api.GET("/login/", s.handleLoginPage())
		api.POST("/login/", s.handleLogin())
		api.GET("/logout/", s.handleLogout())
		api.POST("/logout/", s.handleLogout())
		api.GET("/profile/", s.requireLogin(), s.handleProfile())
		api.POST("/token/", s.handleToken())
	}

	// APIドキュメント
	s.router.GET("/swagger/", s.handleSwaggerUI())
	s.router.GET("/swagger.json", s.handleSwaggerJSON())
	s.router.GET("/swagger.yaml", s.handleSwaggerYAML())

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "tarzan"})
	})
}

var registerTagNamesOnce sync.Once

// registerJSONTagNames は入力検証エラーのフィールド名にJSONタグ名を使うよう設定する。
func registerJSONTagNames() {
	registerTagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}
