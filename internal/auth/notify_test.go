package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestHTTPNotifier はHTTPNotifierを検証する。
func TestHTTPNotifier(t *testing.T) {
	t.Parallel()

	t.Run("通知サービスへinit種別の通知を送信すること", func(t *testing.T) {
		t.Parallel()

		var (
			gotPath string
			gotBody sendNotificationRequest
		)
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"sent"}`))
		}))
		defer ts.Close()

		err := NewHTTPNotifier(ts.URL).SendWelcome(context.Background(), SanitizedUser{
			ID:        "u-1",
			Email:     "a@example.com",
			FirstName: "Hanako",
			LastName:  "Suzuki",
		})
		if err != nil {
			t.Fatalf("SendWelcome()でエラーが発生: %v", err)
		}
		if gotPath != "/notifications/send" {
			t.Errorf("Path = %q, want %q", gotPath, "/notifications/send")
		}
		want := sendNotificationRequest{Email: "a@example.com", Name: "Hanako Suzuki", Type: "init"}
		if gotBody != want {
			t.Errorf("Body = %+v, want %+v", gotBody, want)
		}
	})

	t.Run("通知サービスがエラーを返した場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		if err := NewHTTPNotifier(ts.URL).SendWelcome(context.Background(), SanitizedUser{}); err == nil {
			t.Fatal("SendWelcome()がエラーを返すべきだが、nilが返った")
		}
	})
}
