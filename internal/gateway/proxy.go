package gateway

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// originalPathKey は書き換え前のパスを保持するコンテキストキー。
type originalPathKey struct{}

// upstreamErrorResponse は転送先に到達できなかった場合のレスポンスボディ。
type upstreamErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Dispatcher はリクエストをRoutingTableに従って転送先サービスへ中継する。
type Dispatcher struct {
	table   *RoutingTable
	proxies []*httputil.ReverseProxy
	logger  *zap.Logger
}

// NewDispatcher はルートごとのリバースプロキシを構築する。
// timeoutは転送先への接続とレスポンスヘッダー受信それぞれの上限時間。
func NewDispatcher(table *RoutingTable, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	transport := newTransport(timeout)
	d := &Dispatcher{
		table:   table,
		proxies: make([]*httputil.ReverseProxy, len(table.rules)),
		logger:  logger,
	}
	for i := range table.rules {
		d.proxies[i] = d.newReverseProxy(&table.rules[i], transport)
	}
	return d
}

// newTransport は転送用のHTTPトランスポートを生成する。
func newTransport(timeout time.Duration) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: time.Second,
	}
}

// newReverseProxy は1つのルートに対応するリバースプロキシを生成する。
// Hostヘッダーは転送先のホストに置き換え、X-Forwarded-* ヘッダーを付与する。
func (d *Dispatcher) newReverseProxy(rule *RouteRule, transport http.RoundTripper) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Transport: transport,
		Rewrite: func(pr *httputil.ProxyRequest) {
			// 書き換え規則が無い場合は %2F などのエンコードを含めてパスをそのまま転送する
			if len(rule.Rewrite) > 0 {
				rewritten := rule.RewritePath(pr.In.URL.EscapedPath())
				decoded, err := url.PathUnescape(rewritten)
				if err != nil {
					decoded = rewritten
				}
				pr.Out.URL.Path = decoded
				pr.Out.URL.RawPath = rewritten
			}
			pr.SetURL(rule.Target)
			pr.SetXForwarded()

			d.logger.Info("リクエストを転送します",
				zap.String("route", rule.Name),
				zap.String("method", pr.In.Method),
				zap.String("path", pr.In.URL.Path),
				zap.String("target", rule.Target.String()),
				zap.String("rewritten_path", pr.Out.URL.EscapedPath()),
			)
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			originalPath, _ := r.Context().Value(originalPathKey{}).(string)
			d.logger.Error("転送先との通信に失敗",
				zap.String("route", rule.Name),
				zap.String("method", r.Method),
				zap.String("path", originalPath),
				zap.String("target", rule.Target.String()),
				zap.String("rewritten_path", r.URL.Path),
				zap.Error(err),
			)
			writeJSON(w, http.StatusBadGateway, upstreamErrorResponse{
				Message: "Bad Gateway",
				Error:   err.Error(),
			})
		},
	}
}

// ServeHTTP はパスに一致するルートへリクエストを転送する。
// 一致するルートが無い場合は404を返す。
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	i := d.table.matchIndex(r.URL.Path)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, upstreamErrorResponse{
			Message: "Not Found",
			Error:   "no route for " + r.URL.Path,
		})
		return
	}

	ctx := context.WithValue(r.Context(), originalPathKey{}, r.URL.Path)
	d.proxies[i].ServeHTTP(w, r.WithContext(ctx))
}

// Handle はDispatcherをGinのハンドラとして実行する。
// 転送先がボディ無しで応答した場合も、そのステータスコードをそのまま返す。
func (d *Dispatcher) Handle(c *gin.Context) {
	d.ServeHTTP(c.Writer, c.Request)
	c.Writer.WriteHeaderNow()
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
