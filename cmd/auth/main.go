// 認証サービスのエントリポイント。
// ユーザー登録・ログイン・トークン検証を担当し、HS256署名のアクセストークンを発行する。
// DATABASE_URLが設定されていればPostgreSQL、なければSQLiteにユーザーを保存する。
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/nao1215/bookie/internal/auth"
	"github.com/nao1215/bookie/pkg/config"
	"github.com/nao1215/bookie/pkg/logging"
	"github.com/nao1215/bookie/pkg/server"
)

func main() {
	cfg, err := config.LoadAuth()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	logger, err := logging.New("auth", cfg.LogLevel)
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("認証サービスが異常終了しました", zap.Error(err))
	}
}

// run はストアを初期化して認証サービスを起動し、ctxがキャンセルされるまで待つ。
func run(ctx context.Context, cfg *config.Auth, logger *zap.Logger) error {
	users, closeStore, err := openUserStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var notifier auth.Notifier
	if cfg.NotificationServiceURL != "" {
		notifier = auth.NewHTTPNotifier(cfg.NotificationServiceURL)
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn, users, logger)
	service, err := auth.NewService(users, tokens, notifier, cfg.BcryptCost, logger)
	if err != nil {
		return err
	}
	defer service.Wait()

	srv := auth.NewServer(service, tokens, logger)
	return server.Run(ctx, server.New(cfg.Port, srv.Handler()), logger)
}

// openUserStore は設定に応じてPostgreSQLまたはSQLiteのユーザーストアを開く。
func openUserStore(ctx context.Context, cfg *config.Auth, logger *zap.Logger) (auth.UserStore, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := auth.NewPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		store, err := auth.NewPostgresUserStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	}

	db, err := auth.OpenSQLite(ctx, cfg.SQLitePath, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("SQLiteを使用します", zap.String("path", cfg.SQLitePath))
	return auth.NewSQLiteUserStore(db), func() { _ = db.Close() }, nil
}
