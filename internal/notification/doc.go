// Package notification は通知サービスの内部実装を提供する。
//
// 予約確定・キャンセル・チェックアウト・ユーザー登録の各通知について
// 件名と本文を組み立ててメールで送信し、送信結果を履歴として保存する。
// SMTPの設定が無い環境ではメールを送らず、内容をログに出力する。
package notification
