// Package config は各サービスの実行時設定を環境変数から読み込む。
//
// 設定はプロセス起動時に一度だけ構築し、各コンポーネントのコンストラクタへ
// 明示的に渡す。リクエスト処理中に環境変数を参照してはならない。
// カレントディレクトリに .env ファイルがあれば、環境変数より先に読み込む
// （既に設定済みの環境変数は上書きしない）。
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// bcryptの許容コスト範囲。golang.org/x/crypto/bcrypt の MinCost / MaxCost と同じ値。
const (
	minBcryptCost = 4
	maxBcryptCost = 31
)

// Gateway はAPI Gatewayサービスの設定。
type Gateway struct {
	// Port はリッスンポート。
	Port string `env:"PORT" envDefault:"8080"`
	// AuthServiceURL は認証サービスのベースURL。
	AuthServiceURL string `env:"AUTH_SERVICE_URL" envDefault:"http://localhost:3001"`
	// ReservationServiceURL は予約サービスのベースURL。
	ReservationServiceURL string `env:"RESERVATION_SERVICE_URL" envDefault:"http://localhost:8001"`
	// NotificationServiceURL は通知サービスのベースURL。
	NotificationServiceURL string `env:"NOTIFICATION_SERVICE_URL" envDefault:"http://localhost:8000"`
	// AuthStripPrefix がtrueの場合、認証サービスへの転送時に /auth 接頭辞を取り除く。
	AuthStripPrefix bool `env:"AUTH_STRIP_PREFIX" envDefault:"false"`
	// ReservationAPIPrefix は予約サービスへの転送時にパスの先頭へ付与する接頭辞（例: "/api"）。
	ReservationAPIPrefix string `env:"RESERVATION_API_PREFIX"`
	// ProxyTimeout は転送先への接続とレスポンスヘッダー受信の上限時間。
	ProxyTimeout time.Duration `env:"PROXY_TIMEOUT" envDefault:"15s"`
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	// CORSAllowCredentials がtrueの場合、CORSで資格情報付きのリクエストを許可する。
	CORSAllowCredentials bool `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	// RateLimitRPS はクライアントIPごとの秒間リクエスト上限。0以下で無効。
	RateLimitRPS float64 `env:"RATE_LIMIT_RPS" envDefault:"0"`
	// RateLimitBurst はレート制限のバースト許容量。
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"20"`
	// LogLevel はログレベル（debug, info, warn, error）。
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Auth は認証サービスの設定。
type Auth struct {
	// Port はリッスンポート。
	Port string `env:"PORT" envDefault:"3001"`
	// JWTSecret はJWT署名用の秘密鍵。
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-key"`
	// JWTExpiresIn は発行するトークンの有効期間。
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"24h"`
	// DatabaseURL はPostgreSQLの接続文字列。空の場合はSQLiteを使用する。
	DatabaseURL string `env:"DATABASE_URL"`
	// SQLitePath はSQLiteデータベースファイルのパス。
	SQLitePath string `env:"SQLITE_PATH" envDefault:"/data/auth.db"`
	// BcryptCost はパスワードハッシュのコスト。
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
	// NotificationServiceURL は通知サービスのベースURL。空の場合はウェルカム通知を送らない。
	NotificationServiceURL string `env:"NOTIFICATION_SERVICE_URL"`
	// LogLevel はログレベル（debug, info, warn, error）。
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Notification は通知サービスの設定。
type Notification struct {
	// Port はリッスンポート。
	Port string `env:"PORT" envDefault:"8000"`
	// SQLitePath は送信履歴を保存するSQLiteデータベースファイルのパス。
	SQLitePath string `env:"SQLITE_PATH" envDefault:"/data/notification.db"`
	// SMTPServer はSMTPサーバーのホスト名。空の場合はメールを送らずログに出力する。
	SMTPServer string `env:"SMTP_SERVER"`
	// SMTPPort はSMTPサーバーのポート。
	SMTPPort int `env:"SMTP_PORT" envDefault:"587"`
	// SMTPEmail は送信元メールアドレス兼SMTP認証のユーザー名。
	SMTPEmail string `env:"SMTP_EMAIL"`
	// SMTPPassword はSMTP認証のパスワード。
	SMTPPassword string `env:"SMTP_PASSWORD"`
	// LogLevel はログレベル（debug, info, warn, error）。
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// SMTPEnabled はSMTP送信に必要な設定が揃っているかを返す。
func (c *Notification) SMTPEnabled() bool {
	return c.SMTPServer != "" && c.SMTPEmail != "" && c.SMTPPassword != ""
}

// LoadGateway は環境変数からGatewayの設定を読み込む。
func LoadGateway() (*Gateway, error) {
	loadDotEnv()
	return loadGateway(env.Options{})
}

// LoadAuth は環境変数から認証サービスの設定を読み込む。
func LoadAuth() (*Auth, error) {
	loadDotEnv()
	return loadAuth(env.Options{})
}

// LoadNotification は環境変数から通知サービスの設定を読み込む。
func LoadNotification() (*Notification, error) {
	loadDotEnv()
	return loadNotification(env.Options{})
}

// loadDotEnv は .env ファイルがあれば読み込む。ファイルが無いのは正常系。
func loadDotEnv() {
	_ = godotenv.Load()
}

func loadGateway(opts env.Options) (*Gateway, error) {
	cfg := &Gateway{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("Gateway設定の読み込みに失敗: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadAuth(opts env.Options) (*Auth, error) {
	cfg := &Auth{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("認証サービス設定の読み込みに失敗: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadNotification(opts env.Options) (*Notification, error) {
	cfg := &Notification{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("通知サービス設定の読み込みに失敗: %w", err)
	}
	if cfg.SMTPPort <= 0 || cfg.SMTPPort > 65535 {
		return nil, fmt.Errorf("SMTP_PORT が不正です: %d", cfg.SMTPPort)
	}
	return cfg, nil
}

func (c *Gateway) validate() error {
	var errs []error
	for name, raw := range map[string]string{
		"AUTH_SERVICE_URL":         c.AuthServiceURL,
		"RESERVATION_SERVICE_URL":  c.ReservationServiceURL,
		"NOTIFICATION_SERVICE_URL": c.NotificationServiceURL,
	} {
		if err := validateBaseURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.ProxyTimeout <= 0 {
		errs = append(errs, errors.New("PROXY_TIMEOUT は正の値である必要があります"))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST は正の値である必要があります"))
	}
	return errors.Join(errs...)
}

func (c *Auth) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET が空です"))
	}
	if c.JWTExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN は正の値である必要があります"))
	}
	if c.BcryptCost < minBcryptCost || c.BcryptCost > maxBcryptCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST は%d〜%dの範囲である必要があります: %d", minBcryptCost, maxBcryptCost, c.BcryptCost))
	}
	if c.NotificationServiceURL != "" {
		if err := validateBaseURL(c.NotificationServiceURL); err != nil {
			errs = append(errs, fmt.Errorf("NOTIFICATION_SERVICE_URL: %w", err))
		}
	}
	return errors.Join(errs...)
}

// validateBaseURL はスキームとホストを持つ絶対URLであることを検証する。
func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("URLの解析に失敗: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("スキームはhttpまたはhttpsである必要があります: %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("ホストが空です: %q", raw)
	}
	return nil
}
