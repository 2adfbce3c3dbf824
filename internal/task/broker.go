package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultQueue はタスクメッセージを格納するRedisリストのキー。
	DefaultQueue = "tarzan:tasks"
	// resultKeyPrefix は実行結果を格納するキーの接頭辞。
	resultKeyPrefix = "tarzan:result:"
	// ResultTTL は実行結果の保存期間。
	ResultTTL = 24 * time.Hour
)

// ErrResultNotFound は実行結果がまだ無い、または期限切れであることを表す。
var ErrResultNotFound = errors.New("タスクの実行結果が見つかりません")

// Broker はRedisを使ったタスクキューと結果バックエンド。
type Broker struct {
	client *redis.Client
	queue  string
}

// NewBroker は既存のRedisクライアントからBrokerを生成する。
func NewBroker(client *redis.Client) *Broker {
	return &Broker{client: client, queue: DefaultQueue}
}

// connectOptions は接続時の再試行設定。
type connectOptions struct {
	attempts uint
	delay    time.Duration
}

// ConnectOption はConnectの再試行設定を変更する。
type ConnectOption func(*connectOptions)

// WithRetry は接続確認の試行回数と間隔を設定する。
func WithRetry(attempts uint, delay time.Duration) ConnectOption {
	return func(o *connectOptions) {
		o.attempts = attempts
		o.delay = delay
	}
}

// Connect はredisURLに接続し、疎通を確認したBrokerを返す。
// 起動直後はRedisが準備できていないことがあるため、疎通確認を再試行する。
func Connect(ctx context.Context, redisURL string, opts ...ConnectOption) (*Broker, error) {
	o := connectOptions{attempts: 5, delay: 2 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URLのパースに失敗: %w", err)
	}
	client := redis.NewClient(redisOpts)

	err = retry.Do(func() error {
		return client.Ping(ctx).Err()
	},
		retry.Context(ctx),
		retry.Attempts(o.attempts),
		retry.Delay(o.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[Broker] Redisへの接続を再試行します: attempt=%d, error=%v", n+1, err)
		}),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redisへの接続に失敗: %w", err)
	}

	log.Printf("[Broker] Redisに接続しました: addr=%s, db=%d", redisOpts.Addr, redisOpts.DB)
	return NewBroker(client), nil
}

// Close はRedisクライアントを閉じる。
func (b *Broker) Close() error {
	return b.client.Close()
}

// Enqueue はタスクをキューに投入し、タスクIDを返す。
func (b *Broker) Enqueue(ctx context.Context, name string, args any) (string, error) {
	msg, err := NewMessage(name, args)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("タスクメッセージのシリアライズに失敗: %w", err)
	}
	if err := b.client.LPush(ctx, b.queue, payload).Err(); err != nil {
		return "", fmt.Errorf("タスクの投入に失敗: %w", err)
	}
	return msg.ID, nil
}

// Dequeue はキューからタスクを1件取り出す。
// timeout以内にタスクが無い場合は (nil, nil) を返す。
func (b *Broker) Dequeue(ctx context.Context, timeout time.Duration) (*Message, error) {
	res, err := b.client.BRPop(ctx, timeout, b.queue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("タスクの取り出しに失敗: %w", err)
	}
	// BRPOPは [キー, 値] を返す
	if len(res) != 2 {
		return nil, fmt.Errorf("BRPOPの応答が不正です: %v", res)
	}

	var msg Message
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		return nil, fmt.Errorf("タスクメッセージのデシリアライズに失敗: %w", err)
	}
	return &msg, nil
}

// Len はキューに残っているタスク数を返す。
func (b *Broker) Len(ctx context.Context) (int64, error) {
	n, err := b.client.LLen(ctx, b.queue).Result()
	if err != nil {
		return 0, fmt.Errorf("キュー長の取得に失敗: %w", err)
	}
	return n, nil
}

// StoreResult は実行結果をResultTTLの間保存する。
func (b *Broker) StoreResult(ctx context.Context, r *Result) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("実行結果のシリアライズに失敗: %w", err)
	}
	if err := b.client.Set(ctx, resultKeyPrefix+r.ID, payload, ResultTTL).Err(); err != nil {
		return fmt.Errorf("実行結果の保存に失敗: %w", err)
	}
	return nil
}

// Result はタスクIDに対応する実行結果を返す。
// 結果が無い場合は ErrResultNotFound を返す。
func (b *Broker) Result(ctx context.Context, id string) (*Result, error) {
	payload, err := b.client.Get(ctx, resultKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("実行結果の取得に失敗: %w", err)
	}

	var r Result
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("実行結果のデシリアライズに失敗: %w", err)
	}
	return &r, nil
}
