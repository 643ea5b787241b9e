package repo

import (
	"context"
	"errors"
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

// callLogDocument is the stored shape of model.CallLog
type callLogDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	From       interface{}        `bson:"from"`
	To         interface{}        `bson:"to"`
	CallType   string             `bson:"callType"`
	Status     model.CallStatus   `bson:"status"`
	StartedAt  time.Time          `bson:"startedAt"`
	AnsweredAt *time.Time         `bson:"answeredAt"`
	EndedAt    *time.Time         `bson:"endedAt"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

type callLogRepository struct {
	mongoRepo *db.Repository[callLogDocument]
	logger    *zap.Logger
}

func NewCallLogRepository(con *mongo.Database, collection string, logger *zap.Logger) CallLogRepository {
	return &callLogRepository{
		mongoRepo: db.NewRepository[callLogDocument](con, collection),
		logger:    logger,
	}
}

// EnsureCallLogIndexes creates the {from, to, startedAt desc} index the
// latest-log lookups rely on.
func EnsureCallLogIndexes(ctx context.Context, con *mongo.Database, collection string) error {
	repo := db.NewRepository[callLogDocument](con, collection)
	return repo.EnsureIndexes(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "from", Value: 1}, {Key: "to", Value: 1}, {Key: "startedAt", Value: -1}},
		Options: options.Index().SetName("from_to_startedAt"),
	})
}

func (r *callLogRepository) InsertCallLog(ctx context.Context, log *model.CallLog) (string, error) {
	if err := validateCallLog(log); err != nil {
		return "", err
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	id, err := r.mongoRepo.Create(ctx, toCallLogDocument(log))
	if err != nil {
		r.logger.Error("failed to insert call log",
			zap.String("from", log.From),
			zap.String("to", log.To),
			zap.String("status", string(log.Status)),
			zap.Error(err),
		)
		return "", wrapErr("insert call log", err)
	}

	log.ID = id
	r.logger.Debug("call log inserted",
		zap.String("call_id", id),
		zap.String("status", string(log.Status)),
	)
	return id, nil
}

func (r *callLogRepository) FindLatestCallLog(ctx context.Context, filter model.CallLogFilter) (*model.CallLog, error) {
	if err := validateCallLogFilter(filter); err != nil {
		return nil, err
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	fb := db.NewFilter()
	if filter.EitherDirection {
		fb.Or(
			bson.M{"from": objectRef(filter.From), "to": objectRef(filter.To)},
			bson.M{"from": objectRef(filter.To), "to": objectRef(filter.From)},
		)
	} else {
		fb.Eq("from", objectRef(filter.From)).Eq("to", objectRef(filter.To))
	}
	if len(filter.Statuses) > 0 {
		fb.In("status", filter.Statuses)
	}

	doc, err := r.mongoRepo.FindLatest(ctx, fb.Build(), "startedAt")
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Debug("no matching call log",
				zap.String("from", filter.From),
				zap.String("to", filter.To),
			)
			return nil, ErrNotFound
		}
		return nil, wrapErr("find call log", err)
	}
	return doc.toModel(), nil
}

func (r *callLogRepository) UpdateCallLog(ctx context.Context, id string, update model.CallLogUpdate) error {
	if update.Status == "" {
		return ErrInvalidUpdate
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	set := bson.M{"status": update.Status, "updatedAt": updatedAt(update)}
	if update.AnsweredAt != nil {
		set["answeredAt"] = *update.AnsweredAt
	}
	if update.EndedAt != nil {
		set["endedAt"] = *update.EndedAt
	}

	where := bson.M{}
	if update.Expect != "" {
		where["status"] = update.Expect
	}

	result, err := r.mongoRepo.UpdateByIDWhere(ctx, id, where, set)
	if err != nil {
		return wrapErr("update call log", err)
	}
	if result.MatchedCount == 0 {
		if update.Expect == "" {
			return ErrNotFound
		}
		exists, err := r.mongoRepo.Exists(ctx, id)
		if err != nil {
			return wrapErr("update call log", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStatusChanged
	}

	r.logger.Debug("call log updated",
		zap.String("call_id", id),
		zap.String("status", string(update.Status)),
	)
	return nil
}

func toCallLogDocument(log *model.CallLog) callLogDocument {
	return callLogDocument{
		From:       objectRef(log.From),
		To:         objectRef(log.To),
		CallType:   log.CallType,
		Status:     log.Status,
		StartedAt:  log.StartedAt,
		AnsweredAt: log.AnsweredAt,
		EndedAt:    log.EndedAt,
		CreatedAt:  log.CreatedAt,
		UpdatedAt:  log.UpdatedAt,
	}
}

func (d *callLogDocument) toModel() *model.CallLog {
	return &model.CallLog{
		ID:         d.ID.Hex(),
		From:       refString(d.From),
		To:         refString(d.To),
		CallType:   d.CallType,
		Status:     d.Status,
		StartedAt:  d.StartedAt,
		AnsweredAt: d.AnsweredAt,
		EndedAt:    d.EndedAt,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
