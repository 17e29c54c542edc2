package notification

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer はテスト用の通知サーバーを生成する。
func newTestServer(t *testing.T, sender Sender) *Server {
	t.Helper()
	return NewServer(NewService(sender, newTestStore(t), zap.NewNop()), zap.NewNop())
}

// doRequest はリクエストをサーバーに送ってレスポンスを返す。
func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

// TestHandleSend は POST /notifications/send を検証する。
func TestHandleSend(t *testing.T) {
	t.Parallel()

	t.Run("送信に成功した場合は200を返すこと", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		s := newTestServer(t, sender)
		w := doRequest(s, http.MethodPost, "/notifications/send", `{"email":"u@x.com","name":"Taro","type":"init"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["message"] != "Notification sent successfully" {
			t.Errorf("message = %q", body["message"])
		}
		if len(sender.sent) != 1 || sender.sent[0].Msg.Subject != "Welcome to Bookie! 👋" {
			t.Errorf("sent = %+v", sender.sent)
		}
	})

	t.Run("送信に失敗した場合は500を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &fakeSender{err: errors.New("smtp down")})
		w := doRequest(s, http.MethodPost, "/notifications/send", `{"email":"u@x.com","type":"reservation"}`)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusInternalServerError)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["message"] != "Failed to send notification" {
			t.Errorf("message = %q", body["message"])
		}
	})

	t.Run("不正なリクエストは400を返すこと", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		s := newTestServer(t, sender)
		bodies := []string{
			`{"email":"u@x.com","type":"promo"}`,
			`{"email":"not-an-email","type":"init"}`,
			`{"type":"init"}`,
			`{"email":"u@x.com"}`,
			`{`,
		}
		for _, b := range bodies {
			if w := doRequest(s, http.MethodPost, "/notifications/send", b); w.Code != http.StatusBadRequest {
				t.Errorf("%s: ステータスコード = %d, want %d", b, w.Code, http.StatusBadRequest)
			}
		}
		if len(sender.sent) != 0 {
			t.Errorf("送信されるべきでない: %+v", sender.sent)
		}
	})
}

// TestHandleHistory は GET /notifications を検証する。
func TestHandleHistory(t *testing.T) {
	t.Parallel()

	t.Run("送信履歴を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &fakeSender{})
		for _, b := range []string{
			`{"email":"u@x.com","name":"Taro","type":"reservation"}`,
			`{"email":"other@x.com","type":"init"}`,
		} {
			if w := doRequest(s, http.MethodPost, "/notifications/send", b); w.Code != http.StatusOK {
				t.Fatalf("送信のステータスコード = %d", w.Code)
			}
		}

		w := doRequest(s, http.MethodGet, "/notifications?email=u@x.com", "")
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		var got []Delivery
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if len(got) != 1 || got[0].Type != TypeReservation || got[0].Status != StatusSent {
			t.Errorf("got = %+v", got)
		}
	})

	t.Run("emailが無い場合や不正なlimitは400を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &fakeSender{})
		for _, path := range []string{"/notifications", "/notifications?email=u@x.com&limit=0", "/notifications?email=u@x.com&limit=abc"} {
			if w := doRequest(s, http.MethodGet, path, ""); w.Code != http.StatusBadRequest {
				t.Errorf("%s: ステータスコード = %d, want %d", path, w.Code, http.StatusBadRequest)
			}
		}
	})
}

// TestStatusRoutes は稼働確認用のエンドポイントを検証する。
func TestStatusRoutes(t *testing.T) {
	t.Parallel()

	t.Run("GET /がサービス名を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &fakeSender{})
		w := doRequest(s, http.MethodGet, "/", "")
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["service"] != "notification-service" {
			t.Errorf("service = %q", body["service"])
		}
	})
}
