package databases

// go generate: mockery --name TransactionDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/legal-officer-api/models"
)

const transactionName = "transactions"

// TransactionDatabase contains the methods to use with the transaction database
type TransactionDatabase interface {
	FindByAddress(ctx context.Context, address string) ([]models.Transaction, error)
	Save(ctx context.Context, tx *models.Transaction) error
}

type transactionDatabase struct {
	db DatabaseHelper
}

// NewTransactionDatabase initializes a new instance of transaction database with the provided db connection
func NewTransactionDatabase(db DatabaseHelper) TransactionDatabase {
	return &transactionDatabase{
		db: db,
	}
}

// FindByAddress returns the transactions sent or received by address, newest first.
func (c *transactionDatabase) FindByAddress(ctx context.Context, address string) ([]models.Transaction, error) {
	filter := bson.M{"$or": bson.A{bson.M{"from": address}, bson.M{"to": address}}}
	opts := options.Find().SetSort(bson.D{{Key: "createdOn", Value: -1}})

	curr, err := c.db.Collection(transactionName).Find(ctx, filter, opts)
	if err != nil {
		return nil, storageError("find transactions", err)
	}
	defer curr.Close(ctx)

	transactions := []models.Transaction{}
	if err := curr.All(ctx, &transactions); err != nil {
		return nil, storageError("decode transactions", err)
	}
	return transactions, nil
}

// Save upserts the transaction by its identifier, so replaying a block is harmless.
func (c *transactionDatabase) Save(ctx context.Context, tx *models.Transaction) error {
	err := c.db.Collection(transactionName).ReplaceOne(ctx, bson.M{"_id": tx.ID}, tx, options.Replace().SetUpsert(true))
	return storageError("save transaction", err)
}
