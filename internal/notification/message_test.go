package notification

import (
	"strings"
	"testing"
)

// TestCompose はCompose関数を検証する。
func TestCompose(t *testing.T) {
	t.Parallel()

	t.Run("通知種別ごとの件名と宛名入りの本文を返すこと", func(t *testing.T) {
		t.Parallel()

		subjects := map[Type]string{
			TypeReservation:  "Booking Confirmed! ✅",
			TypeCancellation: "Booking Canceled ❌",
			TypeCheckout:     "Thank You for Staying! 🏨",
			TypeInit:         "Welcome to Bookie! 👋",
		}
		for typ, subject := range subjects {
			msg, err := Compose(typ, "Hanako")
			if err != nil {
				t.Fatalf("Compose(%q)でエラーが発生: %v", typ, err)
			}
			if msg.Subject != subject {
				t.Errorf("Compose(%q).Subject = %q, want %q", typ, msg.Subject, subject)
			}
			if !strings.HasPrefix(msg.Body, "Hello Hanako,\n\n") {
				t.Errorf("Compose(%q).Body = %q", typ, msg.Body)
			}
		}
	})

	t.Run("宛名が空の場合はGuestを使うこと", func(t *testing.T) {
		t.Parallel()

		msg, err := Compose(TypeInit, "  ")
		if err != nil {
			t.Fatalf("Compose()でエラーが発生: %v", err)
		}
		if !strings.HasPrefix(msg.Body, "Hello Guest,") {
			t.Errorf("Body = %q", msg.Body)
		}
	})

	t.Run("未対応の種別はエラーになること", func(t *testing.T) {
		t.Parallel()

		if _, err := Compose(Type("promo"), "x"); err == nil {
			t.Fatal("Compose()がエラーを返すべきだが、nilが返った")
		}
		if Type("promo").Valid() {
			t.Error("Valid() = true, want false")
		}
		if !TypeCheckout.Valid() {
			t.Error("Valid() = false, want true")
		}
	})
}
