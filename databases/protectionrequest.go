package databases

// go generate: mockery --name ProtectionRequestDatabase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/legal-officer-api/models"
)

const protectionRequestName = "protectionrequests"

// ProtectionRequestDatabase contains the methods to use with the protection request database
type ProtectionRequestDatabase interface {
	FindByID(ctx context.Context, id string) (*models.ProtectionRequest, error)
	FindBy(ctx context.Context, spec models.FetchProtectionRequestsSpecification) ([]models.ProtectionRequest, error)
	Save(ctx context.Context, request *models.ProtectionRequest) error
}

type protectionRequestDatabase struct {
	db DatabaseHelper
}

// NewProtectionRequestDatabase initializes a new instance of protection request database with the provided db connection
func NewProtectionRequestDatabase(db DatabaseHelper) ProtectionRequestDatabase {
	return &protectionRequestDatabase{
		db: db,
	}
}

func (c *protectionRequestDatabase) FindByID(ctx context.Context, id string) (*models.ProtectionRequest, error) {
	request := &models.ProtectionRequest{}
	err := c.db.Collection(protectionRequestName).FindOne(ctx, bson.M{"_id": id}).Decode(request)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageError("find protection request", err)
	}
	return request, nil
}

func (c *protectionRequestDatabase) FindBy(ctx context.Context, spec models.FetchProtectionRequestsSpecification) ([]models.ProtectionRequest, error) {
	filter := bson.M{}
	if spec.RequesterAddress != "" {
		filter["requesterAddress"] = spec.RequesterAddress
	}
	if len(spec.Statuses) > 0 {
		filter["status"] = bson.M{"$in": spec.Statuses}
	}
	switch spec.Kind {
	case models.KindProtection:
		filter["isRecovery"] = false
	case models.KindRecovery:
		filter["isRecovery"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdOn", Value: -1}})

	curr, err := c.db.Collection(protectionRequestName).Find(ctx, filter, opts)
	if err != nil {
		return nil, storageError("find protection requests", err)
	}
	defer curr.Close(ctx)

	requests := []models.ProtectionRequest{}
	if err := curr.All(ctx, &requests); err != nil {
		return nil, storageError("decode protection requests", err)
	}
	return requests, nil
}

func (c *protectionRequestDatabase) Save(ctx context.Context, request *models.ProtectionRequest) error {
	err := c.db.Collection(protectionRequestName).ReplaceOne(ctx, bson.M{"_id": request.ID}, request, options.Replace().SetUpsert(true))
	return storageError("save protection request", err)
}
