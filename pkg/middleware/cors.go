package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig はCORSミドルウェアの設定。
type CORSConfig struct {
	// AllowedOrigins は許可するオリジン。"*" を含む場合はすべてのオリジンを許可する。
	AllowedOrigins []string
	// AllowCredentials がtrueの場合、Cookieや認証ヘッダー付きのリクエストを許可する。
	AllowCredentials bool
	// MaxAge はプリフライト結果をブラウザがキャッシュする秒数。0の場合は24時間。
	MaxAge int
}

const (
	corsAllowMethods  = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowHeaders  = "Authorization, Content-Type, X-Request-ID"
	corsExposeHeaders = "X-Request-ID"
	corsDefaultMaxAge = 86400
)

// CORS は許可されたオリジンからのクロスオリジンリクエストを受け付けるGinミドルウェアを返す。
//
// プリフライト（Access-Control-Request-Method付きのOPTIONS）は後続のハンドラへ渡さず204で応答する。
// それ以外のOPTIONSリクエストは通常のリクエストとして扱う。
func CORS(cfg CORSConfig) gin.HandlerFunc {
	allowAll := false
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			allowAll = true
			continue
		}
		origins[o] = struct{}{}
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = corsDefaultMaxAge
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		_, listed := origins[origin]
		allowed := origin != "" && (listed || allowAll)
		if allowed {
			// 資格情報付きの場合 "*" は使えないため、常に要求元のオリジンを返す
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if c.Request.Method != http.MethodOptions || c.GetHeader("Access-Control-Request-Method") == "" {
			c.Next()
			return
		}

		if allowed {
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			if reqHeaders := c.GetHeader("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
			} else {
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			}
			h.Set("Access-Control-Max-Age", strconv.Itoa(maxAge))
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}
