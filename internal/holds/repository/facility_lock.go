package repository

import (
	"context"
	"time"

	holdserrors "lagoon/internal/holds/errors"
	"lagoon/pkg/config"
	"lagoon/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "Facility_locks"
)

// FacilityLockRepository provides short advisory locks serializing hold
// acquisition per facility. The lock document has a deterministic _id,
// so a concurrent insert fails with a duplicate key error. A TTL index
// on expires_at reaps locks left behind by crashed requests.
type FacilityLockRepository interface {
	Acquire(ctx context.Context, lock *model.FacilityLock) error
	Release(ctx context.Context, lockID string) error
}

type mongoFacilityLockRepository struct {
	collection *mongo.Collection
}

func NewFacilityLockRepository(cfg *config.Config) FacilityLockRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoFacilityLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoFacilityLockRepository) Acquire(ctx context.Context, lock *model.FacilityLock) error {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return holdserrors.ErrLockHeld
		}
		return err
	}

	return nil
}

func (r *mongoFacilityLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
