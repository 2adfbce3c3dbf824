package task

import (
	"context"
	"time"
)

// 組み込みタスクの名前。
const (
	TaskEcho          = "echo"
	TaskMigrate       = "migrate"
	TaskClearSessions = "clear_sessions"
)

// EchoArgs はechoタスクの引数。
type EchoArgs struct {
	Arg1 any `json:"arg1"`
	Arg2 any `json:"arg2"`
}

// EchoTask は受け取った2つの引数をそのまま組にして返す。
func EchoTask(_ context.Context, msg *Message) (any, error) {
	args, err := DecodeArgs[EchoArgs](msg)
	if err != nil {
		return nil, err
	}
	return []any{args.Arg1, args.Arg2}, nil
}

// MigrateTask は未適用のマイグレーションを適用するタスクを返す。
func MigrateTask(migrate func(ctx context.Context) (int, error)) Handler {
	return func(ctx context.Context, _ *Message) (any, error) {
		n, err := migrate(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]int{"applied": n}, nil
	}
}

// ClearSessionsTask は期限切れのセッションを削除するタスクを返す。
func ClearSessionsTask(clear func(ctx context.Context, now time.Time) (int64, error)) Handler {
	return func(ctx context.Context, _ *Message) (any, error) {
		n, err := clear(ctx, time.Now().UTC().Truncate(time.Second))
		if err != nil {
			return nil, err
		}
		return map[string]int64{"deleted": n}, nil
	}
}
