package auth

import "errors"

// 認証サービスのドメインエラー。HTTPハンドラで errors.Is により判定し、
// ステータスコードへ変換する。
var (
	// ErrConflict は同じメールアドレスのユーザーが既に存在することを表す（409）。
	ErrConflict = errors.New("このメールアドレスは既に登録されています")
	// ErrUnauthorized は認証に失敗したことを表す（401）。
	// 未登録・パスワード誤り・無効化済みアカウントを区別しない。
	ErrUnauthorized = errors.New("認証に失敗しました")
	// ErrNotFound はユーザーが見つからないことを表す（404）。
	ErrNotFound = errors.New("ユーザーが見つかりません")
	// ErrPasswordTooLong はパスワードがbcryptで扱える長さを超えていることを表す（400）。
	ErrPasswordTooLong = errors.New("パスワードは72バイト以内で指定してください")

	// errInvalidRole は定義されていないロールを表す。
	errInvalidRole = errors.New("不正なロールです")
)
