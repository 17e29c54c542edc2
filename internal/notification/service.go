package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSendFailed はメールの送信に失敗したことを表す。
var ErrSendFailed = errors.New("通知の送信に失敗しました")

// SendInput は通知送信の入力。
type SendInput struct {
	Email string
	Name  string
	Type  Type
}

// Service は通知の組み立てと送信、履歴の保存を行う。
type Service struct {
	sender Sender
	store  *Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService は新しいServiceを生成する。storeがnilの場合は履歴を保存しない。
func NewService(sender Sender, store *Store, logger *zap.Logger) *Service {
	return &Service{
		sender: sender,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Send は通知を組み立てて送信し、結果を履歴に残す。
// 履歴の保存に失敗しても送信結果は変えない。
func (s *Service) Send(ctx context.Context, in SendInput) (*Delivery, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = defaultName
	}
	msg, err := Compose(in.Type, name)
	if err != nil {
		return nil, err
	}

	d := &Delivery{
		ID:        uuid.NewString(),
		Email:     in.Email,
		Name:      name,
		Type:      in.Type,
		Status:    StatusSent,
		CreatedAt: s.now(),
	}
	sendErr := s.sender.Send(ctx, in.Email, msg)
	if sendErr != nil {
		d.Status = StatusFailed
		d.Error = sendErr.Error()
	}

	s.logger.Info("通知を処理しました",
		zap.String("user", d.Email),
		zap.String("name", d.Name),
		zap.String("status", string(d.Status)),
		zap.String("type", string(d.Type)),
		zap.Time("timestamp", d.CreatedAt),
	)

	if s.store != nil {
		if err := s.store.Record(context.WithoutCancel(ctx), d); err != nil {
			s.logger.Warn("送信履歴の保存に失敗", zap.String("id", d.ID), zap.Error(err))
		}
	}

	if sendErr != nil {
		s.logger.Error("通知の送信に失敗", zap.String("user", d.Email), zap.Error(sendErr))
		return d, errors.Join(ErrSendFailed, sendErr)
	}
	return d, nil
}

// History は宛先の送信履歴を新しい順に返す。
func (s *Service) History(ctx context.Context, email string, limit int) ([]Delivery, error) {
	if s.store == nil {
		return []Delivery{}, nil
	}
	return s.store.ListByEmail(ctx, email, limit)
}
