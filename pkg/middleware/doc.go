// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// 未知のパスをフォールバックURLへ転送するリクエストゲート、JWT認証、
// エラーハンドリング、パニックリカバリ、CORS、セキュリティヘッダーなど、
// APIサーバー全体で共通して使用するミドルウェアを含む。
package middleware
