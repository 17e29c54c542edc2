package auth

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nao1215/bookie/pkg/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// OpenSQLite はSQLiteデータベースを開き、usersテーブルのマイグレーションを適用する。
// pathに ":memory:" を指定するとインメモリデータベースを使用する。
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*sql.DB, error) {
	return migration.OpenSQLite(ctx, path, migrationsFS, "migrations", logger)
}

// SQLiteUserStore はSQLiteを使ったUserStoreの実装。
type SQLiteUserStore struct {
	db *sql.DB
}

var _ UserStore = (*SQLiteUserStore)(nil)

// NewSQLiteUserStore はマイグレーション済みの接続からストアを生成する。
func NewSQLiteUserStore(db *sql.DB) *SQLiteUserStore {
	return &SQLiteUserStore{db: db}
}

const sqliteSelectUser = `
	SELECT id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at
	FROM users`

// FindByID はIDでユーザーを取得する。
func (s *SQLiteUserStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.findOne(ctx, sqliteSelectUser+" WHERE id = ?", id)
}

// FindByEmail はメールアドレスでユーザーを取得する。
func (s *SQLiteUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, sqliteSelectUser+" WHERE email = ?", NormalizeEmail(email))
}

func (s *SQLiteUserStore) findOne(ctx context.Context, query string, arg string) (*User, error) {
	var (
		u         User
		role      string
		isActive  int
		createdAt string
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&role, &isActive, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}

	u.Role = Role(role)
	if !u.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", errInvalidRole, role)
	}
	u.IsActive = isActive != 0
	if u.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("created_atの解析に失敗: %w", err)
	}
	if u.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("updated_atの解析に失敗: %w", err)
	}
	return &u, nil
}

// Create はユーザーを新規作成する。メールアドレスが重複する場合は ErrConflict を返す。
func (s *SQLiteUserStore) Create(ctx context.Context, user *User) error {
	if !user.Role.Valid() {
		return fmt.Errorf("%w: %q", errInvalidRole, user.Role)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		NormalizeEmail(user.Email),
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		string(user.Role),
		boolToInt(user.IsActive),
		user.CreatedAt.UTC().Format(time.RFC3339Nano),
		user.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if isSQLiteUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("ユーザーの作成に失敗: %w", err)
	}
	return nil
}

// SetActive はアカウントの有効・無効を切り替える。
func (s *SQLiteUserStore) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?",
		boolToInt(active), time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの更新に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新件数の取得に失敗: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isSQLiteUniqueViolation は一意制約違反かどうかを判定する。
func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
