package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/padsync/backend/internal/room"
)

// MemoryDSN keeps the sqlite backend process-local: rooms do not outlive the
// server. Point the config at a file path instead to share state across
// restarts.
const MemoryDSN = "file:padsync?mode=memory&cache=shared"

// SQLite implements Store on a single sqlite database.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

func NewSQLite(dsn string) (*SQLite, error) {
	if !strings.HasPrefix(dsn, "file:") {
		// Plain path; make sure its directory exists.
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// WAL improves concurrent reader behavior on file-backed databases.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		document TEXT NOT NULL DEFAULT '',
		creator_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Create(ctx context.Context, r *room.Room) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO rooms (id, document, creator_id, mode, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Document, r.CreatorID, string(r.Mode), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomExists
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*room.Room, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, document, creator_id, mode, created_at, updated_at FROM rooms WHERE id = ?",
		id,
	)
	return scanRoom(row)
}

func (s *SQLite) SetDocument(ctx context.Context, id, document string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE rooms SET document = ?, updated_at = ? WHERE id = ?",
		document, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	return err
}

func (s *SQLite) List(ctx context.Context) ([]*room.Room, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, document, creator_id, mode, created_at, updated_at FROM rooms ORDER BY created_at",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*room.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms").Scan(&count)
	return count, err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*room.Room, error) {
	var r room.Room
	var mode string
	err := row.Scan(&r.ID, &r.Document, &r.CreatorID, &mode, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Mode = room.Mode(mode)
	return &r, nil
}
