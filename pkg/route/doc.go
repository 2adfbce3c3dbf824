// Package route はGinに登録されたルート定義からパス解決テーブルを構築する。
//
// リクエストゲートがパスの到達可能性を判定するために使用する。
// テーブルは起動時に一度だけ構築され、以降は読み取り専用として扱う。
package route
