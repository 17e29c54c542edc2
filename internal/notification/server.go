package notification

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nao1215/bookie/pkg/middleware"
)

const (
	// defaultHistoryLimit は送信履歴の既定の取得件数。
	defaultHistoryLimit = 50
	// maxHistoryLimit は送信履歴の最大取得件数。
	maxHistoryLimit = 200
)

// Server は通知サービスのHTTPサーバー。
type Server struct {
	router  *gin.Engine
	service *Service
	logger  *zap.Logger
}

// NewServer は新しい通知サーバーを生成する。
func NewServer(service *Service, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	s := &Server{
		router:  router,
		service: service,
		logger:  logger,
	}
	s.setupRoutes()
	return s
}

// Handler はHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	n := s.router.Group("/notifications")
	{
		n.POST("/send", s.handleSend())
		n.GET("", s.handleHistory())
	}

	s.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "notification-service"})
	})
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "notification"})
	})
}

// sendRequest は POST /notifications/send のリクエストボディ。
type sendRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
	Type  string `json:"type" binding:"required,oneof=reservation cancellation checkout init"`
}

// handleSend は通知を送信するハンドラ。
func (s *Server) handleSend() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		_, err := s.service.Send(c.Request.Context(), SendInput{
			Email: req.Email,
			Name:  req.Name,
			Type:  Type(req.Type),
		})
		if errors.Is(err, ErrSendFailed) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send notification"})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notification sent successfully"})
	}
}

// handleHistory は宛先ごとの送信履歴を返すハンドラ。
func (s *Server) handleHistory() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "emailクエリパラメータが必要です"})
			return
		}

		limit := defaultHistoryLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limitは正の整数で指定してください"})
				return
			}
			limit = min(n, maxHistoryLimit)
		}

		deliveries, err := s.service.History(c.Request.Context(), email, limit)
		if err != nil {
			s.logger.Error("送信履歴の取得に失敗", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "送信履歴の取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, deliveries)
	}
}
