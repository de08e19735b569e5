package databases

// go generate: mockery --name SchedulerLockDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/legal-officer-api/models"
)

const schedulerLockName = "schedulerlocks"

// SchedulerLockDatabase contains the methods to coordinate scheduled jobs across instances
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, owner string) error
}

type schedulerLockDatabase struct {
	db  DatabaseHelper
	now func() time.Time
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		db:  db,
		now: time.Now,
	}
}

// TryAcquireLock takes the named lock for owner when it is free, expired or
// already held by owner. It reports false when another owner holds it.
func (c *schedulerLockDatabase) TryAcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	now := c.now().UTC()
	filter := bson.M{
		"_id": name,
		"$or": bson.A{
			bson.M{"expiresAt": bson.M{"$lt": now}},
			bson.M{"owner": owner},
		},
	}
	update := bson.M{"$set": bson.M{
		"owner":      owner,
		"acquiredAt": now,
		"expiresAt":  now.Add(ttl),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	lock := &models.SchedulerLock{}
	err := c.db.Collection(schedulerLockName).FindOneAndUpdate(ctx, filter, update, opts).Decode(lock)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, storageError("acquire scheduler lock", err)
	}
	return lock.Owner == owner, nil
}

func (c *schedulerLockDatabase) ReleaseLock(ctx context.Context, name, owner string) error {
	err := c.db.Collection(schedulerLockName).DeleteOne(ctx, bson.M{"_id": name, "owner": owner})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return storageError("release scheduler lock", err)
}
