// 通知サービスのエントリポイント。
// 予約・キャンセル・チェックアウト・ユーザー登録の通知メールを送り、送信履歴をSQLiteに保存する。
// SMTP_SERVER・SMTP_EMAIL・SMTP_PASSWORDが揃っていない場合はメールを送らずログに出力する。
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/nao1215/bookie/internal/notification"
	"github.com/nao1215/bookie/pkg/config"
	"github.com/nao1215/bookie/pkg/logging"
	"github.com/nao1215/bookie/pkg/server"
)

func main() {
	cfg, err := config.LoadNotification()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	logger, err := logging.New("notification", cfg.LogLevel)
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("通知サービスが異常終了しました", zap.Error(err))
	}
}

// run は送信履歴のストアとSenderを初期化して通知サービスを起動する。
func run(ctx context.Context, cfg *config.Notification, logger *zap.Logger) error {
	db, err := notification.OpenSQLite(ctx, cfg.SQLitePath, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var sender notification.Sender
	if cfg.SMTPEnabled() {
		sender = notification.NewSMTPSender(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)
		logger.Info("SMTPでメールを送信します", zap.String("server", cfg.SMTPServer), zap.Int("port", cfg.SMTPPort))
	} else {
		sender = notification.NewLogSender(logger)
		logger.Warn("SMTPが未設定のため、メールはログに出力します")
	}

	service := notification.NewService(sender, notification.NewStore(db), logger)
	srv := notification.NewServer(service, logger)
	return server.Run(ctx, server.New(cfg.Port, srv.Handler()), logger)
}
