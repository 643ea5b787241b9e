package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/yashveerji/LinkedIn-B/internal/model"
)

// Readers the relay never needs; tests use them to check what was written.

// GetMessage loads a message by id
func (s *SQLiteStore) GetMessage(ctx context.Context, id string) (*model.Message, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
SELECT id, from_user, to_user, text,
  attachment_url, attachment_type, attachment_name, attachment_mime,
  attachment_size, attachment_width, attachment_height, post,
  delivered_at, read_at, created_at, updated_at
FROM messages WHERE id = ?`, id)

	var (
		msg                  model.Message
		delivered, read      sql.NullInt64
		createdAt, updatedAt int64
	)
	err := row.Scan(&msg.ID, &msg.From, &msg.To, &msg.Text,
		&msg.AttachmentURL, &msg.AttachmentType, &msg.AttachmentName, &msg.AttachmentMime,
		&msg.AttachmentSize, &msg.AttachmentWidth, &msg.AttachmentHeight, &msg.Post,
		&delivered, &read, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("get message", err)
	}

	msg.DeliveredAt = timePtr(delivered)
	msg.ReadAt = timePtr(read)
	msg.CreatedAt = time.Unix(0, createdAt)
	msg.UpdatedAt = time.Unix(0, updatedAt)
	return &msg, nil
}

// GetCallLog loads a call log by id
func (s *SQLiteStore) GetCallLog(ctx context.Context, id string) (*model.CallLog, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
SELECT id, from_user, to_user, call_type, status,
  started_at, answered_at, ended_at, created_at, updated_at
FROM call_logs WHERE id = ?`, id)
	return scanCallLog(row)
}

// LastSeen returns the stored last-seen time of userID
func (s *SQLiteStore) LastSeen(ctx context.Context, userID string) (*time.Time, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	var ts sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT last_seen FROM users WHERE id = ?`, userID).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("get last seen", err)
	}
	return timePtr(ts), nil
}
