package task

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Enqueuer はタスクをキューに投入する。
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, args any) (string, error)
}

// PeriodicTask は一定間隔で投入するタスク。
type PeriodicTask struct {
	Name     string
	Interval time.Duration
	Args     any
}

// Scheduler は登録された定期タスクを間隔ごとにキューへ投入する。
type Scheduler struct {
	enqueuer Enqueuer
	tasks    []PeriodicTask
}

// NewScheduler は新しいSchedulerを生成する。
func NewScheduler(e Enqueuer) *Scheduler {
	return &Scheduler{enqueuer: e}
}

// Add は定期タスクを登録する。Runの前に呼び出す。
func (s *Scheduler) Add(name string, interval time.Duration, args any) error {
	if name == "" {
		return fmt.Errorf("タスク名が空です")
	}
	if interval <= 0 {
		return fmt.Errorf("実行間隔は正の値である必要があります: name=%s, interval=%s", name, interval)
	}
	s.tasks = append(s.tasks, PeriodicTask{Name: name, Interval: interval, Args: args})
	return nil
}

// Run はコンテキストが終了するまで定期タスクを投入し続ける。
func (s *Scheduler) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, t := range s.tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.loop(ctx, t)
		}()
	}
	wg.Wait()
	return nil
}

// loop は1つの定期タスクを間隔ごとに投入する。
func (s *Scheduler) loop(ctx context.Context, t PeriodicTask) {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	log.Printf("[Scheduler] 定期タスクを登録しました: name=%s, interval=%s", t.Name, t.Interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			id, err := s.enqueuer.Enqueue(ctx, t.Name, t.Args)
			if err != nil {
				log.Printf("[Scheduler] 定期タスクの投入に失敗: name=%s, error=%v", t.Name, err)
				continue
			}
			log.Printf("[Scheduler] 定期タスクを投入しました: name=%s, id=%s", t.Name, id)
		}
	}
}
