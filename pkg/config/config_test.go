package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
)

// TestLoadGateway はGateway設定の読み込みを検証する。
func TestLoadGateway(t *testing.T) {
	t.Parallel()

	t.Run("環境変数が無い場合はデフォルト値が使われること", func(t *testing.T) {
		t.Parallel()

		cfg, err := loadGateway(env.Options{Environment: map[string]string{}})
		if err != nil {
			t.Fatalf("loadGateway()でエラーが発生: %v", err)
		}
		if cfg.Port != "8080" {
			t.Errorf("Port = %q, want %q", cfg.Port, "8080")
		}
		if cfg.AuthServiceURL != "http://localhost:3001" {
			t.Errorf("AuthServiceURL = %q, want %q", cfg.AuthServiceURL, "http://localhost:3001")
		}
		if cfg.ProxyTimeout != 15*time.Second {
			t.Errorf("ProxyTimeout = %v, want %v", cfg.ProxyTimeout, 15*time.Second)
		}
		if cfg.AuthStripPrefix {
			t.Error("AuthStripPrefix のデフォルトがtrueになっている")
		}
		if cfg.RateLimitRPS != 0 {
			t.Errorf("RateLimitRPS = %v, want 0", cfg.RateLimitRPS)
		}
		if !cfg.CORSAllowCredentials {
			t.Error("CORSAllowCredentials のデフォルトがfalseになっている")
		}
	})

	t.Run("環境変数で値を上書きできること", func(t *testing.T) {
		t.Parallel()

		cfg, err := loadGateway(env.Options{Environment: map[string]string{
			"PORT":                    "3002",
			"AUTH_SERVICE_URL":        "http://auth:3001",
			"RESERVATION_SERVICE_URL": "http://reservation:8000",
			"AUTH_STRIP_PREFIX":       "true",
			"RESERVATION_API_PREFIX":  "/api",
			"PROXY_TIMEOUT":           "3s",
			"CORS_ALLOWED_ORIGINS":    "http://a.example,http://b.example",
		}})
		if err != nil {
			t.Fatalf("loadGateway()でエラーが発生: %v", err)
		}
		if cfg.Port != "3002" {
			t.Errorf("Port = %q, want %q", cfg.Port, "3002")
		}
		if !cfg.AuthStripPrefix {
			t.Error("AuthStripPrefix がtrueになっていない")
		}
		if cfg.ReservationAPIPrefix != "/api" {
			t.Errorf("ReservationAPIPrefix = %q, want %q", cfg.ReservationAPIPrefix, "/api")
		}
		if cfg.ProxyTimeout != 3*time.Second {
			t.Errorf("ProxyTimeout = %v, want %v", cfg.ProxyTimeout, 3*time.Second)
		}
		want := []string{"http://a.example", "http://b.example"}
		if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
			t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
		}
	})

	t.Run("不正なサービスURLはエラーになること", func(t *testing.T) {
		t.Parallel()

		_, err := loadGateway(env.Options{Environment: map[string]string{
			"AUTH_SERVICE_URL": "localhost:3001",
		}})
		if err == nil {
			t.Fatal("loadGateway()がエラーを返すべきだが、nilが返った")
		}
		if !strings.Contains(err.Error(), "AUTH_SERVICE_URL") {
			t.Errorf("エラーに環境変数名が含まれていない: %v", err)
		}
	})

	t.Run("タイムアウトが0の場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		_, err := loadGateway(env.Options{Environment: map[string]string{
			"PROXY_TIMEOUT": "0s",
		}})
		if err == nil {
			t.Fatal("loadGateway()がエラーを返すべきだが、nilが返った")
		}
	})
}

// TestLoadAuth は認証サービス設定の読み込みを検証する。
func TestLoadAuth(t *testing.T) {
	t.Parallel()

	t.Run("環境変数が無い場合はデフォルト値が使われること", func(t *testing.T) {
		t.Parallel()

		cfg, err := loadAuth(env.Options{Environment: map[string]string{}})
		if err != nil {
			t.Fatalf("loadAuth()でエラーが発生: %v", err)
		}
		if cfg.Port != "3001" {
			t.Errorf("Port = %q, want %q", cfg.Port, "3001")
		}
		if cfg.JWTExpiresIn != 24*time.Hour {
			t.Errorf("JWTExpiresIn = %v, want %v", cfg.JWTExpiresIn, 24*time.Hour)
		}
		if cfg.DatabaseURL != "" {
			t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
		}
		if cfg.BcryptCost != 10 {
			t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
		}
	})

	t.Run("有効期間を指定できること", func(t *testing.T) {
		t.Parallel()

		cfg, err := loadAuth(env.Options{Environment: map[string]string{
			"JWT_EXPIRES_IN": "1h30m",
			"JWT_SECRET":     "s3cret",
		}})
		if err != nil {
			t.Fatalf("loadAuth()でエラーが発生: %v", err)
		}
		if cfg.JWTExpiresIn != 90*time.Minute {
			t.Errorf("JWTExpiresIn = %v, want %v", cfg.JWTExpiresIn, 90*time.Minute)
		}
		if cfg.JWTSecret != "s3cret" {
			t.Errorf("JWTSecret = %q, want %q", cfg.JWTSecret, "s3cret")
		}
	})

	t.Run("bcryptコストが範囲外の場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		_, err := loadAuth(env.Options{Environment: map[string]string{
			"BCRYPT_COST": "2",
		}})
		if err == nil {
			t.Fatal("loadAuth()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("不正な通知サービスURLはエラーになること", func(t *testing.T) {
		t.Parallel()

		_, err := loadAuth(env.Options{Environment: map[string]string{
			"NOTIFICATION_SERVICE_URL": "ftp://notification",
		}})
		if err == nil {
			t.Fatal("loadAuth()がエラーを返すべきだが、nilが返った")
		}
	})
}

// TestLoadNotification はloadNotification関数を検証する。
func TestLoadNotification(t *testing.T) {
	t.Parallel()

	t.Run("環境変数が無い場合はデフォルト値が使われSMTPは無効になること", func(t *testing.T) {
		t.Parallel()

		cfg, err := loadNotification(env.Options{Environment: map[string]string{}})
		if err != nil {
			t.Fatalf("loadNotification()でエラーが発生: %v", err)
		}
		if cfg.Port != "8000" {
			t.Errorf("Port = %q, want %q", cfg.Port, "8000")
		}
		if cfg.SMTPPort != 587 {
			t.Errorf("SMTPPort = %d, want 587", cfg.SMTPPort)
		}
		if cfg.SMTPEnabled() {
			t.Error("SMTPEnabled() = true, want false")
		}
	})

	t.Run("SMTPの設定が揃っている場合は有効になること", func(t *testing.T) {
		t.Parallel()

		cfg, err := loadNotification(env.Options{Environment: map[string]string{
			"SMTP_SERVER":   "smtp.example.com",
			"SMTP_EMAIL":    "noreply@example.com",
			"SMTP_PASSWORD": "secret",
		}})
		if err != nil {
			t.Fatalf("loadNotification()でエラーが発生: %v", err)
		}
		if !cfg.SMTPEnabled() {
			t.Error("SMTPEnabled() = false, want true")
		}
	})

	t.Run("SMTPポートが範囲外の場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		_, err := loadNotification(env.Options{Environment: map[string]string{"SMTP_PORT": "70000"}})
		if err == nil {
			t.Fatal("loadNotification()がエラーを返すべきだが、nilが返った")
		}
	})
}
