package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nao1215/bookie/pkg/middleware"
)

// Claims は検証済みトークンから取り出した認証情報。
type Claims struct {
	SubjectID string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// VerifyResult はトークンの署名・有効期限検証の結果。
// Valid が false の場合、Claims は nil。
type VerifyResult struct {
	Valid  bool
	Claims *Claims
}

// ValidationResult はユーザーの生存確認まで含めたトークン検証の結果。
// Valid が false の場合、User は nil（JSONでは null）。
type ValidationResult struct {
	Valid bool           `json:"valid"`
	User  *SanitizedUser `json:"user"`
}

// TokenService はアクセストークンの発行と検証を行う。
// 署名鍵と有効期間は生成後に変更しない。
type TokenService struct {
	secret string
	ttl    time.Duration
	users  UserStore
	logger *zap.Logger
	now    func() time.Time
}

var _ middleware.TokenVerifier = (*TokenService)(nil)

// NewTokenService は新しいTokenServiceを生成する。
func NewTokenService(secret string, ttl time.Duration, users UserStore, logger *zap.Logger) *TokenService {
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// Issue はユーザーのアクセストークンを発行する。
func (t *TokenService) Issue(user *User) (string, error) {
	return middleware.GenerateJWT(t.secret, user.ID, user.Email, string(user.Role), t.now(), t.ttl)
}

// ParseToken はトークンを検証してJWTクレームを返す。
// ストアは参照しないため、JWTAuthミドルウェアの検証器として使える。
func (t *TokenService) ParseToken(tokenString string) (*middleware.JWTClaims, error) {
	return middleware.ParseJWT(t.secret, tokenString, t.now)
}

// Verify はトークンの署名・有効期限・形式を検証する。I/Oは行わず、エラーも返さない。
func (t *TokenService) Verify(tokenString string) VerifyResult {
	jc, err := t.ParseToken(tokenString)
	if err != nil {
		return VerifyResult{}
	}

	claims := &Claims{
		SubjectID: jc.Subject,
		Email:     jc.Email,
		Role:      Role(jc.Role),
	}
	if jc.IssuedAt != nil {
		claims.IssuedAt = jc.IssuedAt.Time
	}
	if jc.ExpiresAt != nil {
		claims.ExpiresAt = jc.ExpiresAt.Time
	}
	return VerifyResult{Valid: true, Claims: claims}
}

// Validate はトークンを検証したうえで、ユーザーが存在し有効であることを確認する。
// どのような失敗も {Valid: false, User: nil} として返す。
func (t *TokenService) Validate(ctx context.Context, tokenString string) ValidationResult {
	result := t.Verify(tokenString)
	if !result.Valid {
		return ValidationResult{}
	}

	user, err := t.users.FindByID(ctx, result.Claims.SubjectID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			t.logger.Warn("トークン検証中のユーザー取得に失敗",
				zap.String("user_id", result.Claims.SubjectID),
				zap.Error(err),
			)
		}
		return ValidationResult{}
	}
	if !user.IsActive {
		return ValidationResult{}
	}

	sanitized := user.Sanitize()
	return ValidationResult{Valid: true, User: &sanitized}
}
