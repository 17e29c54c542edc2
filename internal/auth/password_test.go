package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// TestHashPassword はHashPasswordとComparePasswordを検証する。
func TestHashPassword(t *testing.T) {
	t.Parallel()

	t.Run("ハッシュ化したパスワードと一致すること", func(t *testing.T) {
		t.Parallel()

		hash, err := HashPassword("s3cret!", bcrypt.MinCost)
		if err != nil {
			t.Fatalf("HashPassword()でエラーが発生: %v", err)
		}
		if hash == "s3cret!" {
			t.Error("平文のまま保存されている")
		}
		if !ComparePassword(hash, "s3cret!") {
			t.Error("ComparePassword() = false, want true")
		}
	})

	t.Run("異なるパスワードとは一致しないこと", func(t *testing.T) {
		t.Parallel()

		hash, err := HashPassword("s3cret!", bcrypt.MinCost)
		if err != nil {
			t.Fatalf("HashPassword()でエラーが発生: %v", err)
		}
		if ComparePassword(hash, "wrong") {
			t.Error("ComparePassword() = true, want false")
		}
	})

	t.Run("ハッシュ形式でない値とは一致しないこと", func(t *testing.T) {
		t.Parallel()

		if ComparePassword("not-a-hash", "s3cret!") {
			t.Error("ComparePassword() = true, want false")
		}
	})

	t.Run("範囲外のコストはエラーになること", func(t *testing.T) {
		t.Parallel()

		if _, err := HashPassword("s3cret!", bcrypt.MaxCost+1); err == nil {
			t.Fatal("HashPassword()がエラーを返すべきだが、nilが返った")
		}
	})
}
