package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yashveerji/LinkedIn-B/internal/model"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

var sqliteMigrations = []string{
	`
CREATE TABLE IF NOT EXISTS messages (
  id                TEXT PRIMARY KEY,
  from_user         TEXT NOT NULL,
  to_user           TEXT NOT NULL,
  text              TEXT NOT NULL DEFAULT '',
  attachment_url    TEXT NOT NULL DEFAULT '',
  attachment_type   TEXT NOT NULL DEFAULT '',
  attachment_name   TEXT NOT NULL DEFAULT '',
  attachment_mime   TEXT NOT NULL DEFAULT '',
  attachment_size   INTEGER NOT NULL DEFAULT 0,
  attachment_width  INTEGER NOT NULL DEFAULT 0,
  attachment_height INTEGER NOT NULL DEFAULT 0,
  post              TEXT NOT NULL DEFAULT '',
  delivered_at      INTEGER,
  read_at           INTEGER,
  created_at        INTEGER NOT NULL,
  updated_at        INTEGER NOT NULL
);
`,
	`
CREATE INDEX IF NOT EXISTS idx_messages_from_to_created
ON messages (from_user, to_user, created_at DESC);
`,
	`
CREATE TABLE IF NOT EXISTS call_logs (
  id          TEXT PRIMARY KEY,
  from_user   TEXT NOT NULL,
  to_user     TEXT NOT NULL,
  call_type   TEXT NOT NULL CHECK(call_type IN ('audio','video')),
  status      TEXT NOT NULL CHECK(status IN ('ringing','answered','rejected','ended','missed','unavailable')),
  started_at  INTEGER NOT NULL,
  answered_at INTEGER,
  ended_at    INTEGER,
  created_at  INTEGER NOT NULL,
  updated_at  INTEGER NOT NULL
);
`,
	`
CREATE INDEX IF NOT EXISTS idx_call_logs_from_to_started
ON call_logs (from_user, to_user, started_at DESC);
`,
	`
CREATE TABLE IF NOT EXISTS users (
  id        TEXT PRIMARY KEY,
  last_seen INTEGER
);
`,
}

// SQLiteStore implements every repository on a single embedded database. It
// backs local development and tests; production runs on MongoDB.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}

	for i, stmt := range sqliteMigrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite migration %d: %w", i, err)
		}
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// -----------------------------------------------------------------------------
// MessageRepository
// -----------------------------------------------------------------------------

func (s *SQLiteStore) InsertMessage(ctx context.Context, msg *model.Message) (string, error) {
	if err := validateMessage(msg); err != nil {
		return "", err
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO messages (id, from_user, to_user, text,
  attachment_url, attachment_type, attachment_name, attachment_mime,
  attachment_size, attachment_width, attachment_height, post,
  delivered_at, read_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, msg.From, msg.To, msg.Text,
		msg.AttachmentURL, msg.AttachmentType, msg.AttachmentName, msg.AttachmentMime,
		msg.AttachmentSize, msg.AttachmentWidth, msg.AttachmentHeight, msg.Post,
		nullTime(msg.DeliveredAt), nullTime(msg.ReadAt), msg.CreatedAt.UnixNano(), msg.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return "", wrapErr("insert message", err)
	}

	msg.ID = id
	return id, nil
}

func (s *SQLiteStore) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	if id == "" {
		return ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET delivered_at = ?, updated_at = ? WHERE id = ?`,
		at.UnixNano(), at.UnixNano(), id)
	if err != nil {
		return wrapErr("mark delivered", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) MarkConversationRead(ctx context.Context, reader, peer string, at time.Time) (int64, error) {
	if reader == "" || peer == "" {
		return 0, ErrInvalidFilter
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET read_at = ?, updated_at = ? WHERE from_user = ? AND to_user = ? AND read_at IS NULL`,
		at.UnixNano(), at.UnixNano(), peer, reader)
	if err != nil {
		return 0, wrapErr("mark read", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapErr("mark read", err)
	}
	return n, nil
}

// -----------------------------------------------------------------------------
// CallLogRepository
// -----------------------------------------------------------------------------

func (s *SQLiteStore) InsertCallLog(ctx context.Context, log *model.CallLog) (string, error) {
	if err := validateCallLog(log); err != nil {
		return "", err
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO call_logs (id, from_user, to_user, call_type, status,
  started_at, answered_at, ended_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, log.From, log.To, log.CallType, string(log.Status),
		log.StartedAt.UnixNano(), nullTime(log.AnsweredAt), nullTime(log.EndedAt),
		log.CreatedAt.UnixNano(), log.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return "", wrapErr("insert call log", err)
	}

	log.ID = id
	return id, nil
}

func (s *SQLiteStore) FindLatestCallLog(ctx context.Context, filter model.CallLogFilter) (*model.CallLog, error) {
	if err := validateCallLogFilter(filter); err != nil {
		return nil, err
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	var (
		where strings.Builder
		args  []any
	)
	if filter.EitherDirection {
		where.WriteString("((from_user = ? AND to_user = ?) OR (from_user = ? AND to_user = ?))")
		args = append(args, filter.From, filter.To, filter.To, filter.From)
	} else {
		where.WriteString("from_user = ? AND to_user = ?")
		args = append(args, filter.From, filter.To)
	}
	if len(filter.Statuses) > 0 {
		where.WriteString(" AND status IN (?" + strings.Repeat(", ?", len(filter.Statuses)-1) + ")")
		for _, st := range filter.Statuses {
			args = append(args, string(st))
		}
	}

	row := s.db.QueryRowContext(ctx, `
SELECT id, from_user, to_user, call_type, status,
  started_at, answered_at, ended_at, created_at, updated_at
FROM call_logs WHERE `+where.String()+`
ORDER BY started_at DESC, rowid DESC LIMIT 1`, args...)

	return scanCallLog(row)
}

func (s *SQLiteStore) UpdateCallLog(ctx context.Context, id string, update model.CallLogUpdate) error {
	if update.Status == "" {
		return ErrInvalidUpdate
	}
	if id == "" {
		return ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	query := `
UPDATE call_logs SET status = ?,
  answered_at = COALESCE(?, answered_at),
  ended_at = COALESCE(?, ended_at),
  updated_at = ?
WHERE id = ?`
	args := []any{string(update.Status), nullTime(update.AnsweredAt), nullTime(update.EndedAt),
		updatedAt(update).UnixNano(), id}
	if update.Expect != "" {
		query += ` AND status = ?`
		args = append(args, string(update.Expect))
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapErr("update call log", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr("update call log", err)
	}
	if n > 0 {
		return nil
	}
	if update.Expect == "" {
		return ErrNotFound
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM call_logs WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return wrapErr("update call log", err)
	}
	return ErrStatusChanged
}

// -----------------------------------------------------------------------------
// UserRepository
// -----------------------------------------------------------------------------

// UpdateLastSeen upserts the user row; the embedded store does not own profiles.
func (s *SQLiteStore) UpdateLastSeen(ctx context.Context, userID string, at time.Time) error {
	if userID == "" {
		return ErrInvalidID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (id, last_seen) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET last_seen = excluded.last_seen`,
		userID, at.UnixNano())
	if err != nil {
		return wrapErr("update last seen", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Private Helper Methods
// -----------------------------------------------------------------------------

func scanCallLog(row *sql.Row) (*model.CallLog, error) {
	var (
		log                  model.CallLog
		status               string
		startedAt            int64
		answered, ended      sql.NullInt64
		createdAt, updatedAt int64
	)
	err := row.Scan(&log.ID, &log.From, &log.To, &log.CallType, &status,
		&startedAt, &answered, &ended, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("scan call log", err)
	}

	log.Status = model.CallStatus(status)
	log.StartedAt = time.Unix(0, startedAt)
	log.AnsweredAt = timePtr(answered)
	log.EndedAt = timePtr(ended)
	log.CreatedAt = time.Unix(0, createdAt)
	log.UpdatedAt = time.Unix(0, updatedAt)
	return &log, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(0, v.Int64)
	return &t
}
