package notification

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Sender はメールを宛先へ届ける。
type Sender interface {
	Send(ctx context.Context, to string, msg Message) error
}

// LogSender はメールを送らずに内容をログへ出力するSender。SMTP未設定の環境で使う。
type LogSender struct {
	logger *zap.Logger
}

var _ Sender = (*LogSender)(nil)

// NewLogSender は新しいLogSenderを生成する。
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send はメールの内容をログに出力する。
func (s *LogSender) Send(_ context.Context, to string, msg Message) error {
	s.logger.Info("メールを送信しました（ログ出力のみ）",
		zap.String("to", to),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// sendMailFunc はnet/smtp.SendMailと同じシグネチャの送信関数。
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender はSMTPサーバー経由でメールを送るSender。
type SMTPSender struct {
	addr     string
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender はSMTPサーバーのホスト・ポートと認証情報からSMTPSenderを生成する。
// fromは送信元アドレス兼認証ユーザー名。
func NewSMTPSender(host string, port int, from, password string) *SMTPSender {
	return &SMTPSender{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		from:     from,
		auth:     smtp.PlainAuth("", from, password, host),
		sendMail: smtp.SendMail,
	}
}

// Send はメールを送信する。送信の途中でctxがキャンセルされても送信は中断されない。
func (s *SMTPSender) Send(ctx context.Context, to string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.sendMail(s.addr, s.auth, s.from, []string{to}, buildMail(s.from, to, msg)); err != nil {
		return fmt.Errorf("SMTP送信に失敗: %w", err)
	}
	return nil
}

// buildMail はRFC 5322形式のメール本文を組み立てる。件名はUTF-8でエンコードする。
func buildMail(from, to string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}
