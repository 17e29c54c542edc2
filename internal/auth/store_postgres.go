package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// コネクションプールの設定値。
const (
	pgMaxConns          = 10
	pgMinConns          = 1
	pgMaxConnLifetime   = 60 * time.Minute
	pgMaxConnIdleTime   = 10 * time.Minute
	pgHealthCheckPeriod = time.Minute
	pgConnectTimeout    = 5 * time.Second
	pgPingTimeout       = 2 * time.Second
)

// postgresSchema はusersテーブルの定義。SQLite側の migrations/000001_create_users.up.sql と同期すること。
const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'guest' CHECK (role IN ('guest', 'admin', 'staff')),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

// NewPool はPostgreSQLのコネクションプールを生成し、疎通を確認する。
func NewPool(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("DATABASE_URLが不正です: %w", err)
	}
	poolConfig.MaxConns = pgMaxConns
	poolConfig.MinConns = pgMinConns
	poolConfig.MaxConnLifetime = pgMaxConnLifetime
	poolConfig.MaxConnIdleTime = pgMaxConnIdleTime
	poolConfig.HealthCheckPeriod = pgHealthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = pgConnectTimeout

	connectCtx, cancel := context.WithTimeout(ctx, pgConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("コネクションプールの生成に失敗: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, pgPingTimeout)
	defer cancelPing()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("PostgreSQLへの疎通確認に失敗: %w", err)
	}

	logger.Info("PostgreSQLに接続しました",
		zap.Int32("max_conns", pool.Stat().MaxConns()),
	)
	return pool, nil
}

// pgxQuerier は *pgxpool.Pool と pgx.Tx が満たすクエリ実行インターフェース。
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresUserStore はPostgreSQLを使ったUserStoreの実装。
type PostgresUserStore struct {
	db pgxQuerier
}

var _ UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore はusersテーブルを作成したうえでストアを生成する。
func NewPostgresUserStore(ctx context.Context, db pgxQuerier) (*PostgresUserStore, error) {
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return &PostgresUserStore{db: db}, nil
}

const pgSelectUser = `
	SELECT id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at
	FROM users`

// FindByID はIDでユーザーを取得する。
func (s *PostgresUserStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.findOne(ctx, pgSelectUser+" WHERE id = $1", id)
}

// FindByEmail はメールアドレスでユーザーを取得する。
func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, pgSelectUser+" WHERE email = $1", NormalizeEmail(email))
}

func (s *PostgresUserStore) findOne(ctx context.Context, query, arg string) (*User, error) {
	var (
		u    User
		role string
	)
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, mapPostgresError(err, "ユーザーの取得に失敗")
	}
	u.Role = Role(role)
	if !u.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", errInvalidRole, role)
	}
	return &u, nil
}

// Create はユーザーを新規作成する。メールアドレスが重複する場合は ErrConflict を返す。
func (s *PostgresUserStore) Create(ctx context.Context, user *User) error {
	if !user.Role.Valid() {
		return fmt.Errorf("%w: %q", errInvalidRole, user.Role)
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID,
		NormalizeEmail(user.Email),
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		string(user.Role),
		user.IsActive,
		user.CreatedAt.UTC(),
		user.UpdatedAt.UTC(),
	)
	if err != nil {
		return mapPostgresError(err, "ユーザーの作成に失敗")
	}
	return nil
}

// SetActive はアカウントの有効・無効を切り替える。
func (s *PostgresUserStore) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3",
		active, time.Now().UTC(), id,
	)
	if err != nil {
		return mapPostgresError(err, "ユーザーの更新に失敗")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// mapPostgresError はpgxのエラーをドメインエラーへ変換する。
func mapPostgresError(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrConflict
	}
	return fmt.Errorf("%s: %w", msg, err)
}
