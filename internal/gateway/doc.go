// Package gateway はAPI Gatewayサービスの内部実装を提供する。
//
// クライアントからのリクエストをパスの接頭辞で振り分け、認証・予約・通知の
// 各サービスへ中継する。外部からアクセス可能な唯一のサービスであり、
// CORSやセキュリティヘッダー、レート制限はここで適用する。
// 転送先に到達できない場合は 502 {"message":"Bad Gateway","error":...} を返す。
package gateway
