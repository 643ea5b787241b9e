package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yashveerji/LinkedIn-B/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidMessage   = errors.New("invalid message: sender and recipient are required")
	ErrInvalidCallLog   = errors.New("invalid call log: caller, callee and call type are required")
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidFilter    = errors.New("invalid filter: both participants are required")
	ErrInvalidUpdate    = errors.New("invalid update: status is required")
	ErrStatusChanged    = errors.New("call log status changed since it was read")
	ErrOperationTimeout = errors.New("operation timeout exceeded")
)

const (
	// Timeouts
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 10 * time.Second
)

// MessageRepository persists direct messages
type MessageRepository interface {
	InsertMessage(ctx context.Context, msg *model.Message) (string, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) error
	// MarkConversationRead stamps readAt on every unread message sent by peer to reader.
	MarkConversationRead(ctx context.Context, reader, peer string, at time.Time) (int64, error)
}

// CallLogRepository persists call history
type CallLogRepository interface {
	InsertCallLog(ctx context.Context, log *model.CallLog) (string, error)
	// FindLatestCallLog returns the most recently started log matching filter, or ErrNotFound.
	FindLatestCallLog(ctx context.Context, filter model.CallLogFilter) (*model.CallLog, error)
	UpdateCallLog(ctx context.Context, id string, update model.CallLogUpdate) error
}

// UserRepository touches the presence columns of user documents
type UserRepository interface {
	UpdateLastSeen(ctx context.Context, userID string, at time.Time) error
}

// Store bundles the repositories the relay writes to.
type Store struct {
	MessageRepository
	CallLogRepository
	UserRepository
}

func NewStore(messages MessageRepository, calls CallLogRepository, users UserRepository) *Store {
	return &Store{
		MessageRepository: messages,
		CallLogRepository: calls,
		UserRepository:    users,
	}
}

func validateMessage(msg *model.Message) error {
	if msg == nil || msg.From == "" || msg.To == "" {
		return ErrInvalidMessage
	}
	return nil
}

func validateCallLog(log *model.CallLog) error {
	if log == nil || log.From == "" || log.To == "" || !model.IsValidCallType(log.CallType) {
		return ErrInvalidCallLog
	}
	return nil
}

func validateCallLogFilter(filter model.CallLogFilter) error {
	if filter.From == "" || filter.To == "" {
		return ErrInvalidFilter
	}
	return nil
}

// wrapErr maps context deadlines to ErrOperationTimeout and annotates the rest.
func wrapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrOperationTimeout)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func updatedAt(update model.CallLogUpdate) time.Time {
	if update.UpdatedAt.IsZero() {
		return time.Now()
	}
	return update.UpdatedAt
}

func ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hadDeadline := ctx.Deadline(); hadDeadline {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// objectRef stores ids as ObjectIDs when they are valid hex, so references
// line up with the users and posts collections; anything else is stored verbatim.
func objectRef(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func refString(ref interface{}) string {
	switch v := ref.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return ""
	}
}
