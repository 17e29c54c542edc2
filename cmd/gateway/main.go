// API Gatewayサービスのエントリポイント。
// クライアントからのリクエストをパスで振り分け、認証・予約・通知の各サービスへ中継する。
// 外部からアクセス可能な唯一のサービスであり、セキュリティの境界線となる。
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/nao1215/bookie/internal/gateway"
	"github.com/nao1215/bookie/pkg/config"
	"github.com/nao1215/bookie/pkg/logging"
	"github.com/nao1215/bookie/pkg/server"
)

func main() {
	cfg, err := config.LoadGateway()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	logger, err := logging.New("gateway", cfg.LogLevel)
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw, err := gateway.NewServer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Gatewayサーバーの初期化に失敗", zap.Error(err))
	}

	if err := server.Run(ctx, server.New(cfg.Port, gw.Handler()), logger); err != nil {
		logger.Fatal("Gatewayサービスが異常終了しました", zap.Error(err))
	}
}
