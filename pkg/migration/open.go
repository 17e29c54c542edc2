package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// MemoryPath はインメモリデータベースを指すパス。
const MemoryPath = ":memory:"

// OpenSQLite はSQLiteデータベースを開き、dir配下のマイグレーションを適用する。
// pathに MemoryPath を指定するとインメモリデータベースを使用する。
func OpenSQLite(ctx context.Context, path string, fsys fs.FS, dir string, logger *zap.Logger) (*sql.DB, error) {
	dsn := path
	if path != MemoryPath {
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if path == MemoryPath {
		// インメモリDBは接続ごとに別物になるため、接続を1本に固定する
		db.SetMaxOpenConns(1)
	}

	if err := Run(ctx, db, fsys, dir, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("マイグレーションに失敗: %w", err)
	}
	return db, nil
}
