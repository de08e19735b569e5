package databases

// go generate: mockery --name LocRequestDatabase

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/legal-officer-api/models"
)

const locRequestName = "locrequests"

// namespaceNotFound is the server code collMod returns for a missing collection.
const namespaceNotFound = 26

// LocRequestDatabase contains the methods to use with the loc request database
type LocRequestDatabase interface {
	FindByID(ctx context.Context, id string) (*models.LocRequest, error)
	FindBy(ctx context.Context, spec models.FetchLocRequestsSpecification) ([]*models.LocRequest, error)
	Save(ctx context.Context, loc *models.LocRequest) error
	EnsureSchema(ctx context.Context) error
}

type locRequestDatabase struct {
	db DatabaseHelper
}

// NewLocRequestDatabase initializes a new instance of loc request database with the provided db connection
func NewLocRequestDatabase(db DatabaseHelper) LocRequestDatabase {
	return &locRequestDatabase{
		db: db,
	}
}

// itemSchema requires a non-empty natural key on every element of an item array.
func itemSchema(key string) bson.M {
	return bson.M{
		"bsonType": "array",
		"items": bson.M{
			"bsonType": "object",
			"required": bson.A{key},
			"properties": bson.M{
				key: bson.M{"bsonType": "string", "minLength": 1},
			},
		},
	}
}

func locRequestValidator() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "requesterAddress", "ownerAddress", "status", "createdOn"},
			"properties": bson.M{
				"status": bson.M{"enum": bson.A{
					string(models.LocRequested), string(models.LocOpen), string(models.LocRejected),
					string(models.LocClosed), string(models.LocVoid),
				}},
				"files":    itemSchema("hash"),
				"metadata": itemSchema("name"),
				"links":    itemSchema("target"),
			},
		},
	}
}

// EnsureSchema installs the document validator and lookup indexes of the
// locrequests collection.
func (c *locRequestDatabase) EnsureSchema(ctx context.Context) error {
	validator := locRequestValidator()
	err := c.db.RunCommand(ctx, bson.D{{Key: "collMod", Value: locRequestName}, {Key: "validator", Value: validator}})
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(namespaceNotFound) {
		err = c.db.RunCommand(ctx, bson.D{{Key: "create", Value: locRequestName}, {Key: "validator", Value: validator}})
	}
	if err != nil {
		return storageError("ensure loc request schema", err)
	}
	for _, keys := range []bson.D{
		{{Key: "ownerAddress", Value: 1}, {Key: "status", Value: 1}},
		{{Key: "requesterAddress", Value: 1}, {Key: "status", Value: 1}},
	} {
		if err := c.db.Collection(locRequestName).CreateIndex(ctx, mongo.IndexModel{Keys: keys}); err != nil {
			return storageError("ensure loc request indexes", err)
		}
	}
	return nil
}

func (c *locRequestDatabase) FindByID(ctx context.Context, id string) (*models.LocRequest, error) {
	var rec models.LocRequestRecord
	err := c.db.Collection(locRequestName).FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageError("find loc request", err)
	}
	loc, err := models.LocRequestFromRecord(rec)
	if err != nil {
		return nil, storageError("load loc request", err)
	}
	return loc, nil
}

func (c *locRequestDatabase) FindBy(ctx context.Context, spec models.FetchLocRequestsSpecification) ([]*models.LocRequest, error) {
	filter := bson.M{}
	if spec.RequesterAddress != "" {
		filter["requesterAddress"] = spec.RequesterAddress
	}
	if spec.OwnerAddress != "" {
		filter["ownerAddress"] = spec.OwnerAddress
	}
	if len(spec.Statuses) > 0 {
		filter["status"] = bson.M{"$in": spec.Statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdOn", Value: -1}})

	curr, err := c.db.Collection(locRequestName).Find(ctx, filter, opts)
	if err != nil {
		return nil, storageError("find loc requests", err)
	}
	defer curr.Close(ctx)

	var recs []models.LocRequestRecord
	if err := curr.All(ctx, &recs); err != nil {
		return nil, storageError("decode loc requests", err)
	}
	locs := make([]*models.LocRequest, 0, len(recs))
	for _, rec := range recs {
		loc, err := models.LocRequestFromRecord(rec)
		if err != nil {
			return nil, storageError("load loc request", err)
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// Save writes the case and all of its items as one document, so either
// everything is stored or nothing is.
func (c *locRequestDatabase) Save(ctx context.Context, loc *models.LocRequest) error {
	rec := loc.Record()
	if err := checkItemKeys(rec); err != nil {
		return storageError("save loc request", err)
	}
	err := c.db.Collection(locRequestName).ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	return storageError("save loc request", err)
}

func checkItemKeys(rec models.LocRequestRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: loc request id is required", ErrConstraintViolation)
	}
	for _, f := range rec.Files {
		if f.Hash == "" {
			return fmt.Errorf("%w: file hash is required", ErrConstraintViolation)
		}
	}
	for _, m := range rec.Metadata {
		if m.Name == "" {
			return fmt.Errorf("%w: metadata name is required", ErrConstraintViolation)
		}
	}
	for _, l := range rec.Links {
		if l.Target == "" {
			return fmt.Errorf("%w: link target is required", ErrConstraintViolation)
		}
	}
	return nil
}
