// バックグラウンドワーカーのエントリポイント。
// Redisのタスクキューからタスクを取り出して実行し、定期タスクを投入する。
package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nao1215/tarzan/internal/blog"
	blogdb "github.com/nao1215/tarzan/internal/blog/db"
	"github.com/nao1215/tarzan/internal/config"
	"github.com/nao1215/tarzan/internal/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqlDB, err := blog.OpenDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("データベースの初期化に失敗: %v", err)
	}
	defer sqlDB.Close()

	broker, err := task.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("ブローカーの初期化に失敗: %v", err)
	}
	defer broker.Close()

	worker := task.NewWorker(broker)
	registerTasks(worker, sqlDB)

	scheduler := task.NewScheduler(broker)
	if cfg.SessionCleanupInterval > 0 {
		if err := scheduler.Add(task.TaskClearSessions, cfg.SessionCleanupInterval, nil); err != nil {
			log.Fatalf("定期タスクの登録に失敗: %v", err)
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := scheduler.Run(ctx); err != nil {
			log.Printf("[Scheduler] %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := worker.Run(ctx); err != nil {
			log.Printf("[Worker] %v", err)
		}
	}()
	wg.Wait()
}

// registerTasks は組み込みタスクをワーカーに登録する。
func registerTasks(w *task.Worker, sqlDB *sql.DB) {
	queries := blogdb.New(sqlDB)

	w.Register(task.TaskEcho, task.EchoTask)
	w.Register(task.TaskMigrate, task.MigrateTask(func(ctx context.Context) (int, error) {
		return blog.Migrate(ctx, sqlDB)
	}))
	w.Register(task.TaskClearSessions, task.ClearSessionsTask(queries.DeleteExpiredSessions))
}
