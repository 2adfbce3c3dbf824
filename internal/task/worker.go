package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
)

// Handler はタスクを実行する関数。戻り値はJSON形式で実行結果として保存される。
type Handler func(ctx context.Context, msg *Message) (any, error)

// Worker はキューからタスクを取り出して実行する。
type Worker struct {
	broker *Broker
	// pollTimeout はDequeueでタスクを待つ最大時間。
	pollTimeout time.Duration

	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewWorker は新しいWorkerを生成する。
func NewWorker(broker *Broker) *Worker {
	return &Worker{
		broker:      broker,
		pollTimeout: time.Second,
		handlers:    make(map[string]Handler),
	}
}

// Register はタスク名に対応するハンドラを登録する。同名のハンドラは上書きされる。
func (w *Worker) Register(name string, h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[name] = h
}

// handler はタスク名に対応するハンドラを返す。
func (w *Worker) handler(name string) (Handler, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	h, ok := w.handlers[name]
	return h, ok
}

// Run はコンテキストが終了するまでタスクを取り出して実行し続ける。
func (w *Worker) Run(ctx context.Context) error {
	log.Printf("[Worker] ワーカーを起動しました: queue=%s", w.broker.queue)
	for {
		if ctx.Err() != nil {
			log.Printf("[Worker] ワーカーを停止しました")
			return nil
		}

		msg, err := w.broker.Dequeue(ctx, w.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("[Worker] タスク取得エラー: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if msg == nil {
			continue
		}

		w.Process(ctx, msg)
	}
}

// Process はタスクを1件実行し、結果を保存して返す。
// 未登録のタスク名はFAILUREとして記録する。
func (w *Worker) Process(ctx context.Context, msg *Message) *Result {
	result := &Result{ID: msg.ID, Name: msg.Name}

	value, err := w.execute(ctx, msg)
	if err != nil {
		result.Status = StatusFailure
		result.Error = err.Error()
	} else if result.Result, err = json.Marshal(value); err != nil {
		result.Status = StatusFailure
		result.Error = fmt.Sprintf("実行結果のシリアライズに失敗: %v", err)
	} else {
		result.Status = StatusSuccess
	}
	result.FinishedAt = time.Now().UTC()

	if err := w.broker.StoreResult(ctx, result); err != nil {
		log.Printf("[Worker] 実行結果の保存に失敗: id=%s, error=%v", msg.ID, err)
	}
	log.Printf("[Worker] タスクを実行しました: name=%s, id=%s, status=%s", msg.Name, msg.ID, result.Status)
	return result
}

// execute はハンドラを実行する。ハンドラのpanicはエラーとして扱う。
func (w *Worker) execute(ctx context.Context, msg *Message) (value any, err error) {
	h, ok := w.handler(msg.Name)
	if !ok {
		return nil, fmt.Errorf("未登録のタスクです: %s", msg.Name)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("タスクの実行中にpanicが発生: %v", r)
		}
	}()
	return h(ctx, msg)
}
