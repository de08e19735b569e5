package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/legal-officer-api/api"
	"github.com/linesmerrill/legal-officer-api/chain"
	"github.com/linesmerrill/legal-officer-api/config"
	"github.com/linesmerrill/legal-officer-api/databases"
	"github.com/linesmerrill/legal-officer-api/models"
	"github.com/linesmerrill/legal-officer-api/services"
)

// ProtectionRequest exported for testing purposes
type ProtectionRequest struct {
	DB         databases.ProtectionRequestDatabase
	Auth       *services.AuthenticationService
	Notifier   services.Notifier
	OwnerEmail string
	Now        func() time.Time
}

// CreateProtectionRequestView is the body of a protection or recovery request
type CreateProtectionRequestView struct {
	OtherLegalOfficerAddress string               `json:"otherLegalOfficerAddress"`
	UserIdentity             models.UserIdentity  `json:"userIdentity"`
	UserPostalAddress        models.PostalAddress `json:"userPostalAddress"`
	IsRecovery               bool                 `json:"isRecovery"`
	AddressToRecover         string               `json:"addressToRecover"`
}

// AcceptProtectionRequestView carries the identity case backing an acceptance
type AcceptProtectionRequestView struct {
	LocID string `json:"locId"`
}

// FetchProtectionRequestsResponse lists protection requests
type FetchProtectionRequestsResponse struct {
	Requests []models.ProtectionRequest `json:"requests"`
}

// RecoveryInfoResponse pairs a recovery request with the active protection
// of the account it wants to recover.
type RecoveryInfoResponse struct {
	AddressToRecover string                    `json:"addressToRecover"`
	Recovery         models.ProtectionRequest  `json:"recoveryAccount"`
	Protection       *models.ProtectionRequest `json:"accountToRecover"`
}

// CreateProtectionRequestHandler records a request from the authenticated
// user for protection, or for recovery of a lost account, by the node owner.
func (p ProtectionRequest) CreateProtectionRequestHandler(w http.ResponseWriter, r *http.Request) {
	var view CreateProtectionRequestView
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if view.IsRecovery && !chain.ValidAddress(view.AddressToRecover) {
		config.ErrorStatus("invalid address to recover", http.StatusBadRequest, w, errors.New("a recovery request needs a valid addressToRecover"))
		return
	}
	if !view.IsRecovery {
		view.AddressToRecover = ""
	}

	request := &models.ProtectionRequest{
		ID:                       uuid.New().String(),
		RequesterAddress:         api.AuthenticatedAddress(r.Context()),
		LegalOfficerAddress:      p.Auth.NodeOwner(),
		OtherLegalOfficerAddress: view.OtherLegalOfficerAddress,
		UserIdentity:             view.UserIdentity,
		UserPostalAddress:        view.UserPostalAddress,
		CreatedOn:                now(p.Now),
		IsRecovery:               view.IsRecovery,
		AddressToRecover:         view.AddressToRecover,
		Status:                   models.ProtectionPending,
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := p.DB.Save(ctx, request); err != nil {
		config.ErrorStatus("failed to save protection request", http.StatusInternalServerError, w, err)
		return
	}
	zap.S().Infow("protection request created", "id", request.ID, "requester", request.RequesterAddress, "recovery", request.IsRecovery)

	template := services.TemplateProtectionRequested
	if request.IsRecovery {
		template = services.TemplateRecoveryRequested
	}
	services.NotifyAsync(p.Notifier, p.OwnerEmail, template, notificationData(request))
	respond(w, http.StatusOK, request)
}

// FetchProtectionRequestsHandler returns the requests matching a specification.
// Callers other than the node owner only see their own requests.
func (p ProtectionRequest) FetchProtectionRequestsHandler(w http.ResponseWriter, r *http.Request) {
	var spec models.FetchProtectionRequestsSpecification
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	caller := api.AuthenticatedAddress(r.Context())
	if !p.Auth.IsNodeOwner(caller) && spec.RequesterAddress != caller {
		config.ErrorStatus("forbidden", http.StatusForbidden, w, errors.New("requesterAddress must be the authenticated address"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	requests, err := p.DB.FindBy(ctx, spec)
	if err != nil {
		config.ErrorStatus("failed to get protection requests", http.StatusInternalServerError, w, err)
		return
	}
	if requests == nil {
		requests = []models.ProtectionRequest{}
	}
	respond(w, http.StatusOK, FetchProtectionRequestsResponse{Requests: requests})
}

// AcceptProtectionRequestHandler approves a pending request
func (p ProtectionRequest) AcceptProtectionRequestHandler(w http.ResponseWriter, r *http.Request) {
	if !requireOwner(p.Auth, w, r) {
		return
	}
	var view AcceptProtectionRequestView
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if view.LocID == "" {
		config.ErrorStatus("missing locId", http.StatusBadRequest, w, errors.New("an identity case is required to accept a request"))
		return
	}
	request, ok := p.find(w, r)
	if !ok {
		return
	}
	if err := request.Accept(now(p.Now), view.LocID); err != nil {
		config.ErrorStatus("failed to accept protection request", http.StatusBadRequest, w, err)
		return
	}
	if !p.save(w, r, request) {
		return
	}

	template := services.TemplateProtectionAccepted
	if request.IsRecovery {
		template = services.TemplateRecoveryAccepted
	}
	services.NotifyAsync(p.Notifier, request.UserIdentity.Email, template, notificationData(request))
	respond(w, http.StatusOK, request)
}

// RejectProtectionRequestHandler refuses a pending request
func (p ProtectionRequest) RejectProtectionRequestHandler(w http.ResponseWriter, r *http.Request) {
	if !requireOwner(p.Auth, w, r) {
		return
	}
	var view RejectView
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	request, ok := p.find(w, r)
	if !ok {
		return
	}
	if err := request.Reject(view.RejectReason, now(p.Now)); err != nil {
		config.ErrorStatus("failed to reject protection request", http.StatusBadRequest, w, err)
		return
	}
	if !p.save(w, r, request) {
		return
	}

	template := services.TemplateProtectionRejected
	if request.IsRecovery {
		template = services.TemplateRecoveryRejected
	}
	services.NotifyAsync(p.Notifier, request.UserIdentity.Email, template, notificationData(request))
	respond(w, http.StatusOK, request)
}

// RecoveryInfoHandler returns what the node owner needs to review a pending
// recovery request: the request and the active protection, if any, of the
// account to recover.
func (p ProtectionRequest) RecoveryInfoHandler(w http.ResponseWriter, r *http.Request) {
	if !requireOwner(p.Auth, w, r) {
		return
	}
	request, ok := p.find(w, r)
	if !ok {
		return
	}
	if !request.IsRecovery || request.Status != models.ProtectionPending {
		config.ErrorStatus("not a pending recovery request", http.StatusBadRequest, w, models.ErrInvalidTransition)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	protections, err := p.DB.FindBy(ctx, models.FetchProtectionRequestsSpecification{
		RequesterAddress: request.AddressToRecover,
		Statuses:         []models.ProtectionRequestStatus{models.ProtectionActivated},
		Kind:             models.KindProtection,
	})
	if err != nil {
		config.ErrorStatus("failed to get protection requests", http.StatusInternalServerError, w, err)
		return
	}

	info := RecoveryInfoResponse{AddressToRecover: request.AddressToRecover, Recovery: *request}
	if len(protections) > 0 {
		info.Protection = &protections[0]
	}
	respond(w, http.StatusOK, info)
}

func (p ProtectionRequest) find(w http.ResponseWriter, r *http.Request) (*models.ProtectionRequest, bool) {
	requestID := mux.Vars(r)["request_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	request, err := p.DB.FindByID(ctx, requestID)
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("protection request not found", http.StatusNotFound, w, err)
		return nil, false
	}
	if err != nil {
		config.ErrorStatus("failed to get protection request by ID", http.StatusInternalServerError, w, err)
		return nil, false
	}
	return request, true
}

func (p ProtectionRequest) save(w http.ResponseWriter, r *http.Request, request *models.ProtectionRequest) bool {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := p.DB.Save(ctx, request); err != nil {
		config.ErrorStatus("failed to save protection request", http.StatusInternalServerError, w, err)
		return false
	}
	return true
}

func notificationData(request *models.ProtectionRequest) map[string]interface{} {
	return map[string]interface{}{
		"requestId":        request.ID,
		"requesterAddress": request.RequesterAddress,
		"firstName":        request.UserIdentity.FirstName,
		"lastName":         request.UserIdentity.LastName,
		"isRecovery":       request.IsRecovery,
		"addressToRecover": request.AddressToRecover,
		"rejectReason":     request.Decision.RejectReason,
	}
}
