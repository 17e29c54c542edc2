package auth

import (
	"context"
	"strings"

	"github.com/nao1215/bookie/pkg/httpclient"
)

// notificationTypeInit は登録完了時のウェルカム通知を表す通知種別。
const notificationTypeInit = "init"

// Notifier はユーザーへの通知を送信する。
type Notifier interface {
	// SendWelcome はサインアップ完了を通知する。
	SendWelcome(ctx context.Context, user SanitizedUser) error
}

// sendNotificationRequest は通知サービスの POST /notifications/send のリクエストボディ。
type sendNotificationRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Type  string `json:"type"`
}

// HTTPNotifier は通知サービスへHTTPで通知を依頼するNotifier。
type HTTPNotifier struct {
	client *httpclient.Client
}

var _ Notifier = (*HTTPNotifier)(nil)

// NewHTTPNotifier は通知サービスのベースURLを指定してHTTPNotifierを生成する。
func NewHTTPNotifier(baseURL string, opts ...httpclient.Option) *HTTPNotifier {
	return &HTTPNotifier{client: httpclient.New(baseURL, opts...)}
}

// SendWelcome は通知サービスにウェルカム通知の送信を依頼する。
func (n *HTTPNotifier) SendWelcome(ctx context.Context, user SanitizedUser) error {
	return n.client.PostJSON(ctx, "/notifications/send", sendNotificationRequest{
		Email: user.Email,
		Name:  strings.TrimSpace(user.FirstName + " " + user.LastName),
		Type:  notificationTypeInit,
	}, nil)
}
