// Package auth は認証サービスの内部実装を提供する。
//
// ユーザー登録（サインアップ）、ログイン、プロフィール取得、トークン検証を担当する。
// アクセストークンはHS256署名のJWTで、サーバー側に失効リストは持たない。
// トークン検証ではユーザーストアを再参照し、削除・無効化されたアカウントの
// トークンを拒否する。
package auth
