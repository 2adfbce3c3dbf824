// Package account はユーザー名・パスワードの検証とサインアップフォームを提供する。
//
// 各バリデータは検証に成功した場合nilを返し、失敗した場合は
// ErrValidationをラップしたエラーを返す。
package account
