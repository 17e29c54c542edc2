package gateway

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nao1215/bookie/pkg/config"
	"github.com/nao1215/bookie/pkg/middleware"
)

// Server はAPI GatewayサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// dispatcher はルーティングテーブルに従ってリクエストを転送する。
	dispatcher *Dispatcher
	// logger は構造化ロガー。
	logger *zap.Logger
}

// NewServer は新しいGatewayサーバーを生成する。
// ctxはレート制限の後片付けなど、サーバーと同じ寿命を持つ処理の停止に使う。
func NewServer(ctx context.Context, cfg *config.Gateway, logger *zap.Logger) (*Server, error) {
	rules, err := DefaultRules(cfg)
	if err != nil {
		return nil, err
	}
	table, err := NewRoutingTable(rules...)
	if err != nil {
		return nil, err
	}
	for _, r := range table.Rules() {
		logger.Info("ルートを登録しました",
			zap.String("route", r.Name),
			zap.Strings("match", r.Match),
			zap.String("target", r.Target.String()),
		)
	}

	router := gin.New()
	// 末尾スラッシュの有無で転送先が変わらないよう、リダイレクトはしない
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecureHeaders())
	router.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: cfg.CORSAllowCredentials,
	}))
	if cfg.RateLimitRPS > 0 {
		router.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	s := &Server{
		router:     router,
		dispatcher: NewDispatcher(table, cfg.ProxyTimeout, logger),
		logger:     logger,
	}
	s.setupRoutes()
	return s, nil
}

// Handler はHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はルーティングを設定する。
// ローカルのハンドラに一致しないリクエストはすべてDispatcherへ渡す。
func (s *Server) setupRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API Gateway is running"})
	})
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})

	s.router.NoRoute(s.dispatcher.Handle)
}
