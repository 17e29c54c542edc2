package notification

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nao1215/bookie/pkg/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Status は送信結果。
type Status string

const (
	// StatusSent は送信に成功したことを表す。
	StatusSent Status = "sent"
	// StatusFailed は送信に失敗したことを表す。
	StatusFailed Status = "failed"
)

// Delivery は1件の送信履歴。
type Delivery struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// OpenSQLite はSQLiteデータベースを開き、deliveriesテーブルのマイグレーションを適用する。
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*sql.DB, error) {
	return migration.OpenSQLite(ctx, path, migrationsFS, "migrations", logger)
}

// timeLayout はcreated_atの保存形式。文字列順と時刻順を一致させるため桁数を固定する。
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store は送信履歴をSQLiteに保存する。
type Store struct {
	db *sql.DB
}

// NewStore はマイグレーション済みの接続からStoreを生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record は送信履歴を1件保存する。
func (s *Store) Record(ctx context.Context, d *Delivery) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries (id, email, name, type, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Email, d.Name, string(d.Type), string(d.Status), d.Error,
		d.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("送信履歴の保存に失敗: %w", err)
	}
	return nil
}

// ListByEmail は宛先の送信履歴を新しい順に最大limit件返す。
func (s *Store) ListByEmail(ctx context.Context, email string, limit int) ([]Delivery, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, name, type, status, error, created_at
		 FROM deliveries WHERE email = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		email, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("送信履歴の取得に失敗: %w", err)
	}
	defer rows.Close()

	deliveries := make([]Delivery, 0)
	for rows.Next() {
		var (
			d         Delivery
			typ       string
			status    string
			createdAt string
		)
		if err := rows.Scan(&d.ID, &d.Email, &d.Name, &typ, &status, &d.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("送信履歴の読み取りに失敗: %w", err)
		}
		d.Type = Type(typ)
		d.Status = Status(status)
		if d.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("created_atの解析に失敗: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("送信履歴の取得に失敗: %w", err)
	}
	return deliveries, nil
}
