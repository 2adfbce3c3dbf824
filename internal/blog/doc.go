// Package blog はブログAPIサービス（投稿・ユーザー・セッション認証・APIドキュメント）の
// HTTPサーバーを提供する。
//
// すべてのリクエストはまずルート解決ゲートを通り、登録されたルートに
// 解決できないパスはフォールバックURL（既定では /api/）へリダイレクトされる。
package blog
