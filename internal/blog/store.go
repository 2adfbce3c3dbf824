package blog

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/tarzan/pkg/migration"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.up.sql
var migrationsFS embed.FS

// migrationsDir は埋め込みマイグレーションのディレクトリ名。
const migrationsDir = "migrations"

// dsnParams はSQLite接続時のプラグマと時刻フォーマット。
const dsnParams = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_time_format=sqlite"

// OpenDB はSQLiteデータベースを開く。
// pathが ":memory:" の場合はインメモリDBを1接続で開く。
func OpenDB(path string) (*sql.DB, error) {
	if path == ":memory:" {
		sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)&_time_format=sqlite")
		if err != nil {
			return nil, fmt.Errorf("データベース接続に失敗: %w", err)
		}
		// インメモリDBは接続ごとに別のDBになるため1接続に制限する
		sqlDB.SetMaxOpenConns(1)
		return sqlDB, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("データベースディレクトリの作成に失敗: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", fmt.Sprintf("file:%s?%s", path, dsnParams))
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("データベースへの疎通確認に失敗: %w", err)
	}
	return sqlDB, nil
}

// Migrate は埋め込みマイグレーションのうち未適用のものを適用し、適用数を返す。
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	n, err := migration.Run(ctx, db, migrationsFS, migrationsDir)
	if err != nil {
		return 0, fmt.Errorf("マイグレーションに失敗: %w", err)
	}
	return n, nil
}
