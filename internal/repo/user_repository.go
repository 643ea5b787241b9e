package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/yashveerji/LinkedIn-B/internal/db"
	"github.com/yashveerji/LinkedIn-B/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type userRepository struct {
	mongoRepo *db.Repository[model.User]
	logger    *zap.Logger
}

func NewUserRepository(con *mongo.Database, collection string, logger *zap.Logger) UserRepository {
	return &userRepository{
		mongoRepo: db.NewRepository[model.User](con, collection),
		logger:    logger,
	}
}

func (r *userRepository) UpdateLastSeen(ctx context.Context, userID string, at time.Time) error {
	fb, ok := db.NewFilter().ObjectID("_id", userID)
	if !ok {
		return fmt.Errorf("%w: user %q", ErrInvalidID, userID)
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := r.mongoRepo.UpdateMany(ctx, fb.Build(), bson.M{"lastSeen": at})
	if err != nil {
		return wrapErr("update last seen", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	r.logger.Debug("last seen updated", zap.String("user_id", userID))
	return nil
}
