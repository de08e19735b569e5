package databases

// go generate: mockery --name SyncPointDatabase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/legal-officer-api/models"
)

const syncPointName = "syncpoints"

// SyncPointDatabase contains the methods to use with the sync point database
type SyncPointDatabase interface {
	Get(ctx context.Context, name string) (*models.SyncPoint, error)
	Save(ctx context.Context, point *models.SyncPoint) error
}

type syncPointDatabase struct {
	db DatabaseHelper
}

// NewSyncPointDatabase initializes a new instance of sync point database with the provided db connection
func NewSyncPointDatabase(db DatabaseHelper) SyncPointDatabase {
	return &syncPointDatabase{
		db: db,
	}
}

func (c *syncPointDatabase) Get(ctx context.Context, name string) (*models.SyncPoint, error) {
	point := &models.SyncPoint{}
	err := c.db.Collection(syncPointName).FindOne(ctx, bson.M{"_id": name}).Decode(point)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageError("find sync point", err)
	}
	return point, nil
}

func (c *syncPointDatabase) Save(ctx context.Context, point *models.SyncPoint) error {
	err := c.db.Collection(syncPointName).ReplaceOne(ctx, bson.M{"_id": point.Name}, point, options.Replace().SetUpsert(true))
	return storageError("save sync point", err)
}
