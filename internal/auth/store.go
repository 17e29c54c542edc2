package auth

import "context"

// UserStore はユーザーの永続化を担う。
// 見つからない場合は ErrNotFound、メールアドレス重複時は ErrConflict を返す。
// メールアドレスは NormalizeEmail 済みの値で保存・検索する。
type UserStore interface {
	// FindByID はIDでユーザーを取得する。
	FindByID(ctx context.Context, id string) (*User, error)
	// FindByEmail はメールアドレスでユーザーを取得する。
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Create はユーザーを新規作成する。
	Create(ctx context.Context, user *User) error
	// SetActive はアカウントの有効・無効を切り替える。
	// HTTP APIからは呼ばれず、運用者の管理ツールからアカウントを停止するために使う。
	SetActive(ctx context.Context, id string, active bool) error
}
