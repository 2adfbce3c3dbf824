// Package config はアプリケーション設定を環境変数から読み込む。
//
// 起動時に .env ファイルがあれば先に読み込み、その後環境変数を
// Config構造体にパースする。既に設定されている環境変数は .env で上書きされない。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config はサーバー・ワーカー・マイグレーションコマンドで共有する設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `env:"PORT" envDefault:"8000"`
	// DatabasePath はSQLiteデータベースファイルのパス。
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/tarzan.db"`
	// SecretKey はJWT署名に使用する秘密鍵。
	SecretKey string `env:"SECRET_KEY" envDefault:"dev-secret-key"`
	// Debug はGinをデバッグモードで起動するかどうか。
	Debug bool `env:"DEBUG" envDefault:"false"`
	// AllowedOrigins はCORSを許可するオリジン。
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	// RedisURL はタスクブローカー兼結果バックエンドの接続先。
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	// RedirectURL は解決できないパスの転送先。
	RedirectURL string `env:"REDIRECT_URL" envDefault:"/api/"`
	// Session はセッションCookieの設定。
	Session SessionConfig `envPrefix:"SESSION_"`
	// JWTTTL は発行するJWTの有効期間。
	JWTTTL time.Duration `env:"JWT_TTL" envDefault:"24h"`
	// MigrateInterval はマイグレーションコマンドの実行間隔。0の場合は1回だけ実行する。
	MigrateInterval time.Duration `env:"MIGRATE_INTERVAL" envDefault:"0s"`
	// SessionCleanupInterval は期限切れセッション削除タスクの実行間隔。
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`
}

// SessionConfig はセッションCookieの設定。
type SessionConfig struct {
	// CookieName はセッションCookieの名前。
	CookieName string `env:"COOKIE_NAME" envDefault:"my_session_cookie"`
	// CookieAge はセッションの有効期間。
	CookieAge time.Duration `env:"COOKIE_AGE" envDefault:"1h"`
	// CookieSecure はCookieにSecure属性を付与するかどうか。
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"true"`
}

// Load は .env ファイル（存在する場合）と環境変数から設定を読み込む。
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s の読み込みに失敗: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("環境変数のパースに失敗: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate は設定値の整合性を検証する。
func (c *Config) validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY が空です")
	}
	if c.RedirectURL == "" || c.RedirectURL[0] != '/' {
		return fmt.Errorf("REDIRECT_URL は / で始まる必要があります: %q", c.RedirectURL)
	}
	if c.Session.CookieAge <= 0 {
		return fmt.Errorf("SESSION_COOKIE_AGE は正の値である必要があります: %s", c.Session.CookieAge)
	}
	if c.MigrateInterval < 0 {
		return fmt.Errorf("MIGRATE_INTERVAL は0以上である必要があります: %s", c.MigrateInterval)
	}
	return nil
}

// Addr はHTTPサーバーのリッスンアドレスを返す。
func (c *Config) Addr() string {
	return ":" + c.Port
}
