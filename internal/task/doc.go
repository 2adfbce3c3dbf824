// Package task はRedisをブローカー兼結果バックエンドとするバックグラウンドタスク実行基盤を提供する。
//
// Brokerがタスクメッセージをキューに投入し、Workerが取り出して登録済みハンドラで実行する。
// 実行結果はタスクIDをキーに一定期間保存される。Schedulerは定期タスクを一定間隔で投入する。
package task
