// Package docs Legal Officer API.
//
// Documentation of the Legal Officer API: case (LOC) requests, protection
// requests and transactions mirrored from the chain.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - bearer
//     - basic
//
//    SecurityDefinitions:
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/legal-officer-api/api"
	"github.com/linesmerrill/legal-officer-api/api/handlers"
	"github.com/linesmerrill/legal-officer-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /api/auth/token auth createToken
// Issues a session token to the authenticated caller.
// responses:
//   200: tokenResponse

// A session token and its expiry.
// swagger:response tokenResponse
type tokenResponseWrapper struct {
	// in:body
	Body api.TokenResponse
}

// swagger:route POST /api/loc-request loc createLocRequest
// Creates a case request addressed to the legal officer of this node.
// responses:
//   200: locRequestResponse

// swagger:parameters createLocRequest
type createLocRequestParams struct {
	// in:body
	Body handlers.CreateLocRequestView
}

// swagger:route PUT /api/loc-request loc fetchLocRequests
// Lists the case requests matching a specification.
// responses:
//   200: locRequestsResponse

// swagger:parameters fetchLocRequests
type fetchLocRequestsParams struct {
	// in:body
	Body models.FetchLocRequestsSpecification
}

// swagger:route GET /api/loc-request/{request_id} loc locRequestByID
// Gets a single case request by ID.
// responses:
//   200: locRequestResponse

// swagger:route POST /api/loc-request/{request_id}/files loc addFile
// Adds a draft file to a case; the chain confirms it later.
// responses:
//   200: locRequestResponse

// swagger:parameters addFile
type addFileParams struct {
	// in:body
	Body handlers.AddFileView
}

// A single case with its files, metadata items and links.
// swagger:response locRequestResponse
type locRequestResponseWrapper struct {
	// in:body
	Body models.LocRequestRecord
}

// A list of cases.
// swagger:response locRequestsResponse
type locRequestsResponseWrapper struct {
	// in:body
	Body struct {
		Requests []models.LocRequestRecord `json:"requests"`
	}
}

// swagger:route PUT /api/protection-request protection fetchProtectionRequests
// Lists the protection requests matching a specification.
// responses:
//   200: protectionRequestsResponse

// swagger:parameters fetchProtectionRequests
type fetchProtectionRequestsParams struct {
	// in:body
	Body models.FetchProtectionRequestsSpecification
}

// A list of protection requests.
// swagger:response protectionRequestsResponse
type protectionRequestsResponseWrapper struct {
	// in:body
	Body handlers.FetchProtectionRequestsResponse
}

// swagger:route PUT /api/transaction transaction fetchTransactions
// Lists the transactions sent or received by the caller.
// responses:
//   200: transactionsResponse

// Transactions with their total cost.
// swagger:response transactionsResponse
type transactionsResponseWrapper struct {
	// in:body
	Body handlers.FetchTransactionsResponse
}
