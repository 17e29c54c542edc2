package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// notifyTimeout はウェルカム通知1件あたりの送信上限時間。
const notifyTimeout = 10 * time.Second

// SignupInput はサインアップの入力。
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// SessionResult はサインアップ・ログイン成功時の応答。永続化はしない。
type SessionResult struct {
	User        SanitizedUser `json:"user"`
	AccessToken string        `json:"accessToken"`
}

// Service は認証サービスのユースケースを実装する。
type Service struct {
	users      UserStore
	tokens     *TokenService
	notifier   Notifier
	bcryptCost int
	// dummyHash は存在しないメールアドレスでのログイン時に比較するハッシュ。
	// ユーザーの有無で応答時間に差が出ないようにする。
	dummyHash string
	logger    *zap.Logger
	now       func() time.Time
	// notifications は送信中のウェルカム通知を追跡する。
	notifications sync.WaitGroup
}

// NewService は新しいServiceを生成する。notifierがnilの場合は通知を送らない。
func NewService(users UserStore, tokens *TokenService, notifier Notifier, bcryptCost int, logger *zap.Logger) (*Service, error) {
	dummyHash, err := HashPassword("bookie-dummy-password", bcryptCost)
	if err != nil {
		return nil, err
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		notifier:   notifier,
		bcryptCost: bcryptCost,
		dummyHash:  dummyHash,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Signup はユーザーを登録し、アクセストークンを発行する。
// メールアドレスが登録済みの場合は ErrConflict を返す。
func (s *Service) Signup(ctx context.Context, in SignupInput) (*SessionResult, error) {
	if len(in.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	email := NormalizeEmail(in.Email)

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrConflict
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	hash, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         RoleGuest,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// 事前確認と作成の間に同じメールアドレスが登録された場合もストアが ErrConflict を返す
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	result, err := s.newSession(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ユーザーを登録しました", zap.String("user_id", user.ID))
	s.sendWelcome(ctx, result.User)
	return result, nil
}

// Login はメールアドレスとパスワードで認証し、アクセストークンを発行する。
// 未登録・パスワード誤り・無効化済みアカウントはいずれも ErrUnauthorized を返す。
func (s *Service) Login(ctx context.Context, email, password string) (*SessionResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		ComparePassword(s.dummyHash, password)
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if !ComparePassword(user.PasswordHash, password) {
		return nil, ErrUnauthorized
	}
	if !user.IsActive {
		return nil, ErrUnauthorized
	}
	return s.newSession(user)
}

// Profile はユーザーIDに対応するユーザー情報を返す。
// ユーザーが存在しない場合は ErrNotFound、無効化済みの場合は ErrUnauthorized を返す。
func (s *Service) Profile(ctx context.Context, subjectID string) (*SanitizedUser, error) {
	user, err := s.users.FindByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUnauthorized
	}
	sanitized := user.Sanitize()
	return &sanitized, nil
}

// ValidateToken はトークンを検証し、有効ならユーザー情報を返す。エラーは返さない。
func (s *Service) ValidateToken(ctx context.Context, token string) ValidationResult {
	return s.tokens.Validate(ctx, token)
}

// Wait は送信中のウェルカム通知がすべて終わるまで待つ。
func (s *Service) Wait() {
	s.notifications.Wait()
}

func (s *Service) newSession(user *User) (*SessionResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("アクセストークンの発行に失敗: %w", err)
	}
	return &SessionResult{User: user.Sanitize(), AccessToken: token}, nil
}

// sendWelcome はウェルカム通知を非同期に送信する。失敗はログに残すだけでサインアップは成功させる。
func (s *Service) sendWelcome(ctx context.Context, user SanitizedUser) {
	if s.notifier == nil {
		return
	}

	// リクエスト完了後も送信を続けるため、呼び出し元のキャンセルは引き継がない
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		defer cancel()
		if err := s.notifier.SendWelcome(ctx, user); err != nil {
			s.logger.Warn("ウェルカム通知の送信に失敗",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
		}
	}()
}
