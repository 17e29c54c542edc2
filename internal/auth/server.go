package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nao1215/bookie/pkg/middleware"
)

// Server は認証サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// service は認証のユースケース。
	service *Service
	// tokens はBearerトークンの検証に使う。
	tokens *TokenService
	// logger は構造化ロガー。
	logger *zap.Logger
}

// NewServer は新しい認証サーバーを生成する。
func NewServer(service *Service, tokens *TokenService, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	s := &Server{
		router:  router,
		service: service,
		tokens:  tokens,
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
	auth := s.router.Group("/auth")
	{
		auth.POST("/signup", s.handleSignup())
		auth.POST("/login", s.handleLogin())
		auth.POST("/validate", s.handleValidate())
		auth.GET("/profile", middleware.JWTAuth(s.tokens), s.handleProfile())
	}

	s.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Auth Service is running"})
	})
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "auth"})
	})
}

// signupRequest はサインアップのリクエストボディ。
type signupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

// loginRequest はログインのリクエストボディ。
type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// validateRequest はトークン検証のリクエストボディ。
type validateRequest struct {
	Token string `json:"token"`
}

// handleSignup はユーザー登録のハンドラを返す。
func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		result, err := s.service.Signup(c.Request.Context(), SignupInput{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

// handleLogin はログインのハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		result, err := s.service.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// handleProfile は認証済みユーザーの情報を返すハンドラを返す。
func (s *Server) handleProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		user, err := s.service.Profile(c.Request.Context(), userID)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// handleValidate はトークン検証のハンドラを返す。
// ボディが不正な場合も含め、常に200で {valid, user} を返す。
func (s *Server) handleValidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req validateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, ValidationResult{})
			return
		}
		c.JSON(http.StatusOK, s.service.ValidateToken(c.Request.Context(), req.Token))
	}
}

// writeError はドメインエラーをHTTPレスポンスへ変換する。
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": ErrConflict.Error()})
	case errors.Is(err, ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrUnauthorized.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": ErrNotFound.Error()})
	case errors.Is(err, ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrPasswordTooLong.Error()})
	default:
		_ = c.Error(err)
		s.logger.Error("リクエスト処理に失敗",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "内部サーバーエラーが発生しました"})
	}
}
