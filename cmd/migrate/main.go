// マイグレーションコマンドのエントリポイント。
// MIGRATE_INTERVAL が0なら1回だけ適用して終了し、それ以外は間隔ごとに適用し続ける。
package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/tarzan/internal/blog"
	"github.com/nao1215/tarzan/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	sqlDB, err := blog.OpenDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("データベースの初期化に失敗: %v", err)
	}
	defer sqlDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, sqlDB, cfg.MigrateInterval); err != nil {
		log.Fatalf("%v", err)
	}
}

// run はマイグレーションを適用する。intervalが正なら停止されるまで繰り返す。
func run(ctx context.Context, sqlDB *sql.DB, interval time.Duration) error {
	if err := migrateOnce(ctx, sqlDB); err != nil {
		return err
	}
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[Migration] 停止しました")
			return nil
		case <-ticker.C:
			// 定期実行中の失敗はログに残して次回に再試行する
			if err := migrateOnce(ctx, sqlDB); err != nil {
				log.Printf("[Migration] %v", err)
			}
		}
	}
}

func migrateOnce(ctx context.Context, sqlDB *sql.DB) error {
	n, err := blog.Migrate(ctx, sqlDB)
	if err != nil {
		return err
	}
	log.Printf("[Migration] %d件のマイグレーションを適用しました", n)
	return nil
}
