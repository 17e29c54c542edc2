// Package httpclient はサービス間のHTTP通信を行うクライアントを提供する。
//
// 認証サービスから通知サービスへのウェルカム通知送信など、
// サービス間のJSON通信パターンを統一する。リクエストIDはコンテキスト経由で
// X-Request-ID ヘッダーとして伝播する。
package httpclient
