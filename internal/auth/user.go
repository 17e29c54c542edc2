package auth

import (
	"strings"
	"time"
)

// Role はユーザーのロール。
type Role string

const (
	// RoleGuest はサインアップ直後の一般利用者。
	RoleGuest Role = "guest"
	// RoleAdmin は管理者。
	RoleAdmin Role = "admin"
	// RoleStaff はホテルのスタッフ。
	RoleStaff Role = "staff"
)

// Valid はロールが定義済みの値かどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleAdmin, RoleStaff:
		return true
	}
	return false
}

// User は認証サービスが管理するユーザー。
// PasswordHash を含むため、レスポンスには Sanitize した値を返すこと。
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SanitizedUser はクライアントへ返すユーザー情報。パスワードハッシュを含まない。
type SanitizedUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
	IsActive  bool   `json:"isActive"`
}

// Sanitize は秘匿情報を取り除いたユーザー情報を返す。
func (u *User) Sanitize() SanitizedUser {
	return SanitizedUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
	}
}

// NormalizeEmail は前後の空白を除去して小文字化したメールアドレスを返す。
// 保存時と検索時の両方で使い、大文字小文字を区別しない一意性を保証する。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
