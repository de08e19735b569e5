package services

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/linesmerrill/legal-officer-api/chain"
	"github.com/linesmerrill/legal-officer-api/databases"
	"github.com/linesmerrill/legal-officer-api/logging"
	"github.com/linesmerrill/legal-officer-api/metrics"
	"github.com/linesmerrill/legal-officer-api/models"
)

const balancesPallet = "balances"

// TransactionSynchronizer records every signed extrinsic as a transaction of
// its signer.
type TransactionSynchronizer struct {
	DB      databases.TransactionDatabase
	Metrics *metrics.Metrics
	Logger  *zap.SugaredLogger
}

// NewTransactionSynchronizer creates a synchronizer writing to db.
func NewTransactionSynchronizer(db databases.TransactionDatabase, m *metrics.Metrics) *TransactionSynchronizer {
	return &TransactionSynchronizer{DB: db, Metrics: m}
}

// HandleExtrinsic implements ExtrinsicHandler.
func (s *TransactionSynchronizer) HandleExtrinsic(ctx context.Context, block *chain.Block, e chain.Extrinsic) error {
	if e.Signer == "" {
		return nil
	}
	tx := NewTransaction(block, e)
	if err := s.DB.Save(ctx, tx); err != nil {
		logging.Or(s.Logger, "transactionsync").Errorw("failed to save transaction",
			"id", tx.ID, "extrinsic", e.String(), "error", err)
		s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeStorageError)
		return err
	}
	return nil
}

// NewTransaction builds the transaction of a signed extrinsic. Its identifier
// is derived from the block number and extrinsic index.
func NewTransaction(block *chain.Block, e chain.Extrinsic) *models.Transaction {
	tx := &models.Transaction{
		ID:             strconv.FormatInt(block.Number, 10) + "-" + strconv.Itoa(e.Index),
		BlockNumber:    block.Number,
		ExtrinsicIndex: e.Index,
		From:           e.Signer,
		TransferValue:  "0",
		Tip:            amountOrZero(e.Tip),
		Fee:            amountOrZero(e.Fee),
		Reserved:       e.Reserved(e.Signer),
		Pallet:         e.Pallet,
		Method:         e.Method,
		CreatedOn:      block.Timestamp,
	}
	if e.Pallet == balancesPallet && strings.HasPrefix(e.Method, "transfer") {
		if to, err := e.Args.Account("dest.id"); err == nil {
			tx.To = to
		} else if to, err := e.Args.Account("dest"); err == nil {
			tx.To = to
		}
		if value, err := e.Args.Decimal("value"); err == nil && !e.Failed() {
			tx.TransferValue = value
		}
	}
	return tx
}

func amountOrZero(amount string) string {
	if amount == "" {
		return "0"
	}
	return amount
}
