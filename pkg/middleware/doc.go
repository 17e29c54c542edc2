// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// JWT認証トークンの発行と検証、リクエストIDの付与、構造化リクエストログ、
// パニックリカバリ、CORS、セキュリティヘッダー、クライアントIPごとの
// レート制限など、Gatewayと認証サービスで共通して使用するミドルウェアを含む。
package middleware
