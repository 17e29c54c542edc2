package gateway

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/bookie/pkg/config"
)

// RewriteRule はパスの書き換え規則。Patternに一致した部分をReplacementで置き換える。
// Replacementでは $1 などのキャプチャ参照を使える。
type RewriteRule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// NewRewriteRule は正規表現文字列から書き換え規則を生成する。
func NewRewriteRule(pattern, replacement string) (RewriteRule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return RewriteRule{}, fmt.Errorf("書き換えパターン %q が不正です: %w", pattern, err)
	}
	return RewriteRule{Pattern: re, Replacement: replacement}, nil
}

// RouteRule はパス接頭辞と転送先サービスの対応。
type RouteRule struct {
	// Name はログに出すルート名。
	Name string
	// Match は一致させるパス接頭辞。末尾の "/*" は接頭辞そのものと同じ扱い。
	Match []string
	// Target は転送先サービスのベースURL。
	Target *url.URL
	// Rewrite は順に適用するパス書き換え規則。パーセントエンコードされたままのパスに適用する。
	// 空の場合はパスをそのまま転送する。
	Rewrite []RewriteRule
}

// RewritePath は書き換え規則を順に1回ずつ適用したパスを返す。
// クエリ文字列は対象外。結果は必ず "/" で始まる。
func (r *RouteRule) RewritePath(path string) string {
	for _, rw := range r.Rewrite {
		path = rw.Pattern.ReplaceAllString(path, rw.Replacement)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// RoutingTable は起動時に構築するルートの一覧。構築後は変更しない。
type RoutingTable struct {
	rules []RouteRule
}

// NewRoutingTable はルート定義を検証してRoutingTableを生成する。
func NewRoutingTable(rules ...RouteRule) (*RoutingTable, error) {
	var errs []error
	copied := make([]RouteRule, len(rules))
	for i, r := range rules {
		r.Match = append([]string(nil), r.Match...)
		r.Rewrite = append([]RewriteRule(nil), r.Rewrite...)
		copied[i] = r
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("%d番目のルートに名前がありません", i))
		}
		if r.Target == nil || (r.Target.Scheme != "http" && r.Target.Scheme != "https") || r.Target.Host == "" {
			errs = append(errs, fmt.Errorf("ルート %q の転送先URLが不正です", r.Name))
		}
		if len(r.Match) == 0 {
			errs = append(errs, fmt.Errorf("ルート %q に一致条件がありません", r.Name))
		}
		for j, m := range r.Match {
			if !strings.HasPrefix(m, "/") {
				errs = append(errs, fmt.Errorf("ルート %q の一致条件 %q は \"/\" で始まる必要があります", r.Name, m))
				continue
			}
			r.Match[j] = normalizePrefix(m)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &RoutingTable{rules: copied}, nil
}

// Rules は登録順のルート一覧を返す。
func (t *RoutingTable) Rules() []RouteRule {
	rules := make([]RouteRule, len(t.rules))
	copy(rules, t.rules)
	return rules
}

// Match はパスに一致するルートを返す。
// 複数のルートが一致する場合は最も長い接頭辞を持つルートを選び、
// 長さが同じ場合は先に登録されたルートを選ぶ。
func (t *RoutingTable) Match(path string) (*RouteRule, bool) {
	i := t.matchIndex(path)
	if i < 0 {
		return nil, false
	}
	return &t.rules[i], true
}

// matchIndex は一致したルートの添字を返す。一致しない場合は -1。
func (t *RoutingTable) matchIndex(path string) int {
	best, bestLen := -1, -1
	for i := range t.rules {
		for _, prefix := range t.rules[i].Match {
			if len(prefix) > bestLen && matchPrefix(prefix, path) {
				best, bestLen = i, len(prefix)
			}
		}
	}
	return best
}

// normalizePrefix は末尾の "/*" と "/" を取り除く。"/" 自体はそのまま残す。
func normalizePrefix(prefix string) string {
	prefix = strings.TrimSuffix(prefix, "*")
	if len(prefix) > 1 {
		prefix = strings.TrimRight(prefix, "/")
	}
	if prefix == "" {
		return "/"
	}
	return prefix
}

// matchPrefix はパスがセグメント単位で接頭辞に一致するかを返す。
// "/rooms" は "/rooms"、"/rooms/"、"/rooms/42" に一致し、"/roomsX" には一致しない。
func matchPrefix(prefix, path string) bool {
	if prefix == "/" {
		return true
	}
	rest, ok := strings.CutPrefix(path, prefix)
	return ok && (rest == "" || rest[0] == '/')
}

// DefaultRules は設定から認証・予約・通知サービスへのルートを組み立てる。
func DefaultRules(cfg *config.Gateway) ([]RouteRule, error) {
	authURL, err := url.Parse(cfg.AuthServiceURL)
	if err != nil {
		return nil, fmt.Errorf("AUTH_SERVICE_URLが不正です: %w", err)
	}
	reservationURL, err := url.Parse(cfg.ReservationServiceURL)
	if err != nil {
		return nil, fmt.Errorf("RESERVATION_SERVICE_URLが不正です: %w", err)
	}
	notificationURL, err := url.Parse(cfg.NotificationServiceURL)
	if err != nil {
		return nil, fmt.Errorf("NOTIFICATION_SERVICE_URLが不正です: %w", err)
	}

	authRule := RouteRule{Name: "auth", Match: []string{"/auth"}, Target: authURL}
	if cfg.AuthStripPrefix {
		strip, err := NewRewriteRule(`^/auth`, "")
		if err != nil {
			return nil, err
		}
		authRule.Rewrite = append(authRule.Rewrite, strip)
	}

	reservationRule := RouteRule{
		Name:   "reservation",
		Match:  []string{"/reservations", "/rooms/available", "/rooms"},
		Target: reservationURL,
	}
	if prefix := strings.TrimRight(cfg.ReservationAPIPrefix, "/"); prefix != "" {
		if !strings.HasPrefix(prefix, "/") {
			prefix = "/" + prefix
		}
		sub, err := NewRewriteRule(`^/(reservations|rooms)`, regexpLiteral(prefix)+"/${1}")
		if err != nil {
			return nil, err
		}
		reservationRule.Rewrite = append(reservationRule.Rewrite, sub)
	}

	notificationRule := RouteRule{Name: "notification", Match: []string{"/notifications"}, Target: notificationURL}

	return []RouteRule{authRule, reservationRule, notificationRule}, nil
}

// regexpLiteral は置換文字列中の "$" をリテラルとして扱うようにエスケープする。
func regexpLiteral(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
