package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

// newTestStore はインメモリSQLiteを使うテスト用ストアを生成する。
func newTestStore(t *testing.T) *SQLiteUserStore {
	t.Helper()

	db, err := OpenSQLite(context.Background(), ":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("インメモリDBの作成に失敗: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteUserStore(db)
}

// newTestUser はテスト用のユーザーを生成する。
func newTestUser(id, email string) *User {
	now := time.Date(2026, 1, 2, 3, 4, 5, 6000, time.UTC)
	return &User{
		ID:           id,
		Email:        email,
		PasswordHash: "hash-" + id,
		FirstName:    "Taro",
		LastName:     "Yamada",
		Role:         RoleGuest,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TestSQLiteUserStore はSQLiteUserStoreを検証する。
func TestSQLiteUserStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("作成したユーザーをIDとメールアドレスで取得できること", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		want := newTestUser("u-1", "Taro@Example.com")
		if err := store.Create(ctx, want); err != nil {
			t.Fatalf("Create()でエラーが発生: %v", err)
		}

		got, err := store.FindByID(ctx, "u-1")
		if err != nil {
			t.Fatalf("FindByID()でエラーが発生: %v", err)
		}
		if got.Email != "taro@example.com" {
			t.Errorf("Email = %q, want %q", got.Email, "taro@example.com")
		}
		if got.PasswordHash != want.PasswordHash || got.FirstName != "Taro" || got.LastName != "Yamada" {
			t.Errorf("取得したユーザーが一致しない: %+v", got)
		}
		if got.Role != RoleGuest || !got.IsActive {
			t.Errorf("Role = %q, IsActive = %v, want guest, true", got.Role, got.IsActive)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
		}

		byEmail, err := store.FindByEmail(ctx, "  TARO@example.COM")
		if err != nil {
			t.Fatalf("FindByEmail()でエラーが発生: %v", err)
		}
		if byEmail.ID != "u-1" {
			t.Errorf("ID = %q, want %q", byEmail.ID, "u-1")
		}
	})

	t.Run("大文字小文字違いのメールアドレスはErrConflictになること", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		if err := store.Create(ctx, newTestUser("u-1", "a@example.com")); err != nil {
			t.Fatalf("Create()でエラーが発生: %v", err)
		}
		err := store.Create(ctx, newTestUser("u-2", "A@EXAMPLE.COM"))
		if !errors.Is(err, ErrConflict) {
			t.Errorf("ErrConflictが返るべき: got %v", err)
		}
	})

	t.Run("存在しないユーザーはErrNotFoundになること", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		if _, err := store.FindByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByID: ErrNotFoundが返るべき: got %v", err)
		}
		if _, err := store.FindByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByEmail: ErrNotFoundが返るべき: got %v", err)
		}
		if err := store.SetActive(ctx, "missing", false); !errors.Is(err, ErrNotFound) {
			t.Errorf("SetActive: ErrNotFoundが返るべき: got %v", err)
		}
	})

	t.Run("定義されていないロールのユーザーは作成できないこと", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		u := newTestUser("u-1", "a@example.com")
		u.Role = Role("owner")
		if err := store.Create(ctx, u); !errors.Is(err, errInvalidRole) {
			t.Fatalf("errInvalidRoleが返るべき: got %v", err)
		}
		if _, err := store.FindByID(ctx, "u-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("ユーザーが作成されている: got %v", err)
		}
	})

	t.Run("SetActiveでアカウントを無効化できること", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		if err := store.Create(ctx, newTestUser("u-1", "a@example.com")); err != nil {
			t.Fatalf("Create()でエラーが発生: %v", err)
		}
		if err := store.SetActive(ctx, "u-1", false); err != nil {
			t.Fatalf("SetActive()でエラーが発生: %v", err)
		}
		got, err := store.FindByID(ctx, "u-1")
		if err != nil {
			t.Fatalf("FindByID()でエラーが発生: %v", err)
		}
		if got.IsActive {
			t.Error("IsActive = true, want false")
		}
	})
}
