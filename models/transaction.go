package models

import (
	"math/big"
	"time"
)

// Transaction holds the structure for the transactions collection in mongo.
// Amounts are decimal numerals in the chain's smallest unit.
type Transaction struct {
	ID             string    `json:"-" bson:"_id"`
	BlockNumber    int64     `json:"-" bson:"blockNumber"`
	ExtrinsicIndex int       `json:"-" bson:"extrinsicIndex"`
	From           string    `json:"from" bson:"from"`
	To             string    `json:"to,omitempty" bson:"to,omitempty"`
	TransferValue  string    `json:"transferValue" bson:"transferValue"`
	Tip            string    `json:"tip" bson:"tip"`
	Fee            string    `json:"fee" bson:"fee"`
	Reserved       string    `json:"reserved" bson:"reserved"`
	Pallet         string    `json:"pallet" bson:"pallet"`
	Method         string    `json:"method" bson:"method"`
	CreatedOn      time.Time `json:"createdOn" bson:"createdOn"`
}

// TransactionView is a transaction as returned by the API.
type TransactionView struct {
	Transaction
	Total string `json:"total"`
}

// Total returns transfer value plus tip, fee and reserved amount. Amounts
// that are empty or not numerals count as zero.
func (t Transaction) Total() string {
	total := new(big.Int)
	for _, amount := range []string{t.TransferValue, t.Tip, t.Fee, t.Reserved} {
		if n, ok := new(big.Int).SetString(amount, 10); ok {
			total.Add(total, n)
		}
	}
	return total.String()
}

// View returns the API form of the transaction.
func (t Transaction) View() TransactionView {
	return TransactionView{Transaction: t, Total: t.Total()}
}

// FetchTransactionsSpecification selects transactions sent or received by Address.
type FetchTransactionsSpecification struct {
	Address string `json:"address"`
}
