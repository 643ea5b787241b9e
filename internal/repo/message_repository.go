package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/yashveerji/LinkedIn-B/internal/db"
	"github.com/yashveerji/LinkedIn-B/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// messageDocument is the stored shape of model.Message
type messageDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	From             interface{}        `bson:"from"`
	To               interface{}        `bson:"to"`
	Text             string             `bson:"text"`
	AttachmentURL    string             `bson:"attachmentUrl,omitempty"`
	AttachmentType   string             `bson:"attachmentType,omitempty"`
	AttachmentName   string             `bson:"attachmentName,omitempty"`
	AttachmentMime   string             `bson:"attachmentMime,omitempty"`
	AttachmentSize   int64              `bson:"attachmentSize,omitempty"`
	AttachmentWidth  int                `bson:"attachmentWidth,omitempty"`
	AttachmentHeight int                `bson:"attachmentHeight,omitempty"`
	Post             interface{}        `bson:"post,omitempty"`
	DeliveredAt      *time.Time         `bson:"deliveredAt"`
	ReadAt           *time.Time         `bson:"readAt"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

type messageRepository struct {
	mongoRepo *db.Repository[messageDocument]
	logger    *zap.Logger
}

func NewMessageRepository(con *mongo.Database, collection string, logger *zap.Logger) MessageRepository {
	return &messageRepository{
		mongoRepo: db.NewRepository[messageDocument](con, collection),
		logger:    logger,
	}
}

// EnsureMessageIndexes backs the conversation lookups done by mark_read.
func EnsureMessageIndexes(ctx context.Context, con *mongo.Database, collection string) error {
	repo := db.NewRepository[messageDocument](con, collection)
	return repo.EnsureIndexes(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "from", Value: 1}, {Key: "to", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("from_to_createdAt"),
	})
}

// -----------------------------------------------------------------------------
// InsertMessage
// -----------------------------------------------------------------------------

func (m *messageRepository) InsertMessage(ctx context.Context, msg *model.Message) (string, error) {
	if err := validateMessage(msg); err != nil {
		return "", err
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	doc := toMessageDocument(msg)
	id, err := m.mongoRepo.Create(ctx, doc)
	if err != nil {
		m.logger.Error("failed to insert message",
			zap.String("from", msg.From),
			zap.String("to", msg.To),
			zap.Error(err),
		)
		return "", wrapErr("insert message", err)
	}

	msg.ID = id
	m.logger.Debug("message inserted",
		zap.String("message_id", id),
		zap.String("from", msg.From),
		zap.String("to", msg.To),
	)
	return id, nil
}

// -----------------------------------------------------------------------------
// MarkDelivered
// -----------------------------------------------------------------------------

func (m *messageRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := m.mongoRepo.UpdateByID(ctx, id, bson.M{"deliveredAt": at, "updatedAt": at})
	if err != nil {
		return wrapErr("mark delivered", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// -----------------------------------------------------------------------------
// MarkConversationRead
// -----------------------------------------------------------------------------

func (m *messageRepository) MarkConversationRead(ctx context.Context, reader, peer string, at time.Time) (int64, error) {
	if reader == "" || peer == "" {
		return 0, ErrInvalidFilter
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("from", objectRef(peer)).
		Eq("to", objectRef(reader)).
		IsNull("readAt").
		Build()

	result, err := m.mongoRepo.UpdateMany(ctx, filter, bson.M{"readAt": at, "updatedAt": at})
	if err != nil {
		return 0, wrapErr("mark read", err)
	}

	m.logger.Debug("messages marked read",
		zap.String("reader", reader),
		zap.String("peer", peer),
		zap.Int64("modified", result.ModifiedCount),
	)
	return result.ModifiedCount, nil
}

func toMessageDocument(msg *model.Message) messageDocument {
	doc := messageDocument{
		From:             objectRef(msg.From),
		To:               objectRef(msg.To),
		Text:             msg.Text,
		AttachmentURL:    msg.AttachmentURL,
		AttachmentType:   msg.AttachmentType,
		AttachmentName:   msg.AttachmentName,
		AttachmentMime:   msg.AttachmentMime,
		AttachmentSize:   msg.AttachmentSize,
		AttachmentWidth:  msg.AttachmentWidth,
		AttachmentHeight: msg.AttachmentHeight,
		DeliveredAt:      msg.DeliveredAt,
		ReadAt:           msg.ReadAt,
		CreatedAt:        msg.CreatedAt,
		UpdatedAt:        msg.UpdatedAt,
	}
	if msg.Post != "" {
		doc.Post = objectRef(msg.Post)
	}
	return doc
}
