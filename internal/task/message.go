package task

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message はキューに投入されるタスクメッセージ。
type Message struct {
	// ID はタスクの一意識別子。
	ID string `json:"id"`
	// Name は実行するタスク名。
	Name string `json:"name"`
	// Args はJSON形式のタスク引数。
	Args json.RawMessage `json:"args"`
	// EnqueuedAt はキューに投入された日時。
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Status はタスクの実行結果の状態。
type Status string

const (
	// StatusSuccess はタスクが正常に完了したことを表す。
	StatusSuccess Status = "SUCCESS"
	// StatusFailure はタスクが失敗したことを表す。
	StatusFailure Status = "FAILURE"
)

// Result はタスクの実行結果。
type Result struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Status     Status          `json:"status"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	FinishedAt time.Time       `json:"finished_at"`
}

// NewMessage は新しいタスクメッセージを生成する。
// argsはJSON形式にシリアライズされる。nilの場合は空のオブジェクトになる。
func NewMessage(name string, args any) (*Message, error) {
	if name == "" {
		return nil, fmt.Errorf("タスク名が空です")
	}

	raw := json.RawMessage("{}")
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("タスク引数のシリアライズに失敗: %w", err)
		}
		raw = b
	}

	return &Message{
		ID:         uuid.New().String(),
		Name:       name,
		Args:       raw,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// DecodeArgs はメッセージの引数を指定された型にデシリアライズする。
func DecodeArgs[T any](m *Message) (*T, error) {
	var args T
	if err := json.Unmarshal(m.Args, &args); err != nil {
		return nil, fmt.Errorf("タスク引数のデシリアライズに失敗: %w", err)
	}
	return &args, nil
}
