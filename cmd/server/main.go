// ブログAPIサーバーのエントリポイント。
// 設定を読み込み、データベースのマイグレーションを適用してからHTTPサーバーを起動する。
package main

import (
	"context"
	"log"

	"github.com/nao1215/tarzan/internal/blog"
	"github.com/nao1215/tarzan/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := blog.NewServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("サーバーの初期化に失敗: %v", err)
	}
	defer server.Close()

	log.Printf("Tarzanサーバーを起動します: %s", cfg.Addr())
	if err := server.Run(); err != nil {
		log.Fatalf("サーバーの起動に失敗: %v", err)
	}
}
