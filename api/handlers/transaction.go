package handlers

import (
	"net/http"

	"github.com/linesmerrill/legal-officer-api/api"
	"github.com/linesmerrill/legal-officer-api/config"
	"github.com/linesmerrill/legal-officer-api/databases"
	"github.com/linesmerrill/legal-officer-api/models"
)

// Transaction exported for testing purposes
type Transaction struct {
	DB databases.TransactionDatabase
}

// FetchTransactionsResponse lists transactions
type FetchTransactionsResponse struct {
	Transactions []models.TransactionView `json:"transactions"`
}

// FetchTransactionsHandler returns the transactions sent or received by the
// authenticated address, most recent first.
func (t Transaction) FetchTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	address := api.AuthenticatedAddress(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	transactions, err := t.DB.FindByAddress(ctx, address)
	if err != nil {
		config.ErrorStatus("failed to get transactions", http.StatusInternalServerError, w, err)
		return
	}

	views := make([]models.TransactionView, 0, len(transactions))
	for _, tx := range transactions {
		views = append(views, tx.View())
	}
	respond(w, http.StatusOK, FetchTransactionsResponse{Transactions: views})
}
