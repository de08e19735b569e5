package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/linesmerrill/legal-officer-api/api/handlers"
	"github.com/linesmerrill/legal-officer-api/api/testhelpers"
	mocksdb "github.com/linesmerrill/legal-officer-api/databases/mocks"
	"github.com/linesmerrill/legal-officer-api/models"
)

func TestTransaction_FetchTransactionsHandler(t *testing.T) {
	db := &mocksdb.TransactionDatabase{}
	db.On("FindByAddress", mock.Anything, testhelpers.Requester).Return([]models.Transaction{{
		ID:            "42-1",
		BlockNumber:   42,
		From:          testhelpers.Requester,
		To:            testhelpers.Owner,
		TransferValue: "100",
		Tip:           "1",
		Fee:           "10",
		Reserved:      "0",
		Pallet:        "balances",
		Method:        "transfer",
		CreatedOn:     fixedNow,
	}}, nil)

	req := testhelpers.Request(t, "PUT", "/api/transaction", "", testhelpers.Requester, nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(handlers.Transaction{DB: db}.FetchTransactionsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"transactions":[{
		"from":"`+testhelpers.Requester+`","to":"`+testhelpers.Owner+`",
		"transferValue":"100","tip":"1","fee":"10","reserved":"0",
		"pallet":"balances","method":"transfer","createdOn":"2021-10-01T12:00:00Z","total":"111"}]}`, rr.Body.String())
}

func TestTransaction_FetchTransactionsHandlerError(t *testing.T) {
	db := &mocksdb.TransactionDatabase{}
	db.On("FindByAddress", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	req := testhelpers.Request(t, "PUT", "/api/transaction", "", testhelpers.Requester, nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(handlers.Transaction{DB: db}.FetchTransactionsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "failed to get transactions", errorMessage(t, rr))
}
