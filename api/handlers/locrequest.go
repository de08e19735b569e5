package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/legal-officer-api/api"
	"github.com/linesmerrill/legal-officer-api/config"
	"github.com/linesmerrill/legal-officer-api/databases"
	"github.com/linesmerrill/legal-officer-api/models"
	"github.com/linesmerrill/legal-officer-api/services"
)

// LocRequest exported for testing purposes
type LocRequest struct {
	DB   databases.LocRequestDatabase
	Auth *services.AuthenticationService
	Now  func() time.Time
}

// CreateLocRequestView is the body of a case creation request
type CreateLocRequestView struct {
	RequesterAddress string               `json:"requesterAddress"`
	OwnerAddress     string               `json:"ownerAddress"`
	Description      string               `json:"description"`
	LocType          models.LocType       `json:"locType"`
	UserIdentity     *models.UserIdentity `json:"userIdentity,omitempty"`
}

// FetchLocRequestsResponse lists cases
type FetchLocRequestsResponse struct {
	Requests []*models.LocRequest `json:"requests"`
}

// RejectView carries a legal officer's reason for refusing a request
type RejectView struct {
	RejectReason string `json:"rejectReason"`
}

// AddFileView is the body of a file submission
type AddFileView struct {
	Hash        string `json:"hash"`
	Name        string `json:"name"`
	ContentRef  string `json:"cid"`
	ContentType string `json:"contentType"`
	Nature      string `json:"nature"`
}

// AddMetadataView is the body of a metadata item submission
type AddMetadataView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AddLinkView is the body of a link submission
type AddLinkView struct {
	Target string `json:"target"`
	Nature string `json:"nature"`
}

// CreateLocRequestHandler records a new case. Wallet users open a request to
// the node owner; the node owner creates cases directly in the OPEN state on
// behalf of a requester.
func (l LocRequest) CreateLocRequestHandler(w http.ResponseWriter, r *http.Request) {
	var view CreateLocRequestView
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	caller := api.AuthenticatedAddress(r.Context())
	owner := l.Auth.NodeOwner()
	if view.OwnerAddress != "" && view.OwnerAddress != owner {
		config.ErrorStatus("invalid owner", http.StatusBadRequest, w, fmt.Errorf("%s is not the legal officer of this node", view.OwnerAddress))
		return
	}

	requester, status := caller, models.LocRequested
	if l.Auth.IsNodeOwner(caller) {
		if view.RequesterAddress == "" {
			config.ErrorStatus("invalid requester", http.StatusBadRequest, w, errors.New("requesterAddress is required"))
			return
		}
		requester, status = view.RequesterAddress, models.LocOpen
	}

	loc := models.NewLocRequest(uuid.New().String(), requester, owner, status, now(l.Now))
	loc.Description = view.Description
	loc.LocType = view.LocType
	loc.UserIdentity = view.UserIdentity

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := l.DB.Save(ctx, loc); err != nil {
		config.ErrorStatus("failed to save loc request", http.StatusInternalServerError, w, err)
		return
	}
	zap.S().Infow("loc request created", "id", loc.ID, "requester", requester, "status", status)
	respond(w, http.StatusOK, loc)
}

// FetchLocRequestsHandler returns the cases matching a specification. Callers
// other than the node owner only see their own requests.
func (l LocRequest) FetchLocRequestsHandler(w http.ResponseWriter, r *http.Request) {
	var spec models.FetchLocRequestsSpecification
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	caller := api.AuthenticatedAddress(r.Context())
	if !l.Auth.IsNodeOwner(caller) && spec.RequesterAddress != caller {
		config.ErrorStatus("forbidden", http.StatusForbidden, w, errors.New("requesterAddress must be the authenticated address"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	requests, err := l.DB.FindBy(ctx, spec)
	if err != nil {
		config.ErrorStatus("failed to get loc requests", http.StatusInternalServerError, w, err)
		return
	}
	if requests == nil {
		requests = []*models.LocRequest{}
	}
	respond(w, http.StatusOK, FetchLocRequestsResponse{Requests: requests})
}

// LocRequestByIDHandler returns a case
func (l LocRequest) LocRequestByIDHandler(w http.ResponseWriter, r *http.Request) {
	loc, ok := l.find(w, r)
	if !ok {
		return
	}
	caller := api.AuthenticatedAddress(r.Context())
	if !l.Auth.IsNodeOwner(caller) && loc.RequesterAddress != caller {
		config.ErrorStatus("forbidden", http.StatusForbidden, w, errors.New("not a party of this loc request"))
		return
	}
	respond(w, http.StatusOK, loc)
}

// AcceptLocRequestHandler opens a requested case
func (l LocRequest) AcceptLocRequestHandler(w http.ResponseWriter, r *http.Request) {
	if !requireOwner(l.Auth, w, r) {
		return
	}
	loc, ok := l.find(w, r)
	if !ok {
		return
	}
	if err := loc.Accept(now(l.Now)); err != nil {
		config.ErrorStatus("failed to accept loc request", http.StatusBadRequest, w, err)
		return
	}
	l.save(w, r, loc)
}

// RejectLocRequestHandler refuses a requested case
func (l LocRequest) RejectLocRequestHandler(w http.ResponseWriter, r *http.Request) {
	if !requireOwner(l.Auth, w, r) {
		return
	}
	var view RejectView
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	loc, ok := l.find(w, r)
	if !ok {
		return
	}
	if err := loc.Reject(view.RejectReason, now(l.Now)); err != nil {
		config.ErrorStatus("failed to reject loc request", http.StatusBadRequest, w, err)
		return
	}
	l.save(w, r, loc)
}

// AddFileHandler adds a draft file to a case
func (l LocRequest) AddFileHandler(w http.ResponseWriter, r *http.Request) {
	var view AddFileView
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	l.addItem(w, r, func(loc *models.LocRequest, t time.Time) error {
		return loc.AddFile(models.LocFile{
			Hash:        strings.ToLower(view.Hash),
			Name:        view.Name,
			ContentRef:  view.ContentRef,
			ContentType: view.ContentType,
			Nature:      view.Nature,
			SubmittedOn: t,
			Draft:       true,
		})
	})
}

// AddMetadataHandler adds a draft metadata item to a case
func (l LocRequest) AddMetadataHandler(w http.ResponseWriter, r *http.Request) {
	var view AddMetadataView
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	l.addItem(w, r, func(loc *models.LocRequest, t time.Time) error {
		return loc.AddMetadataItem(models.LocMetadataItem{
			Name:        view.Name,
			Value:       view.Value,
			SubmittedOn: t,
			Draft:       true,
		})
	})
}

// AddLinkHandler adds a draft link to another case
func (l LocRequest) AddLinkHandler(w http.ResponseWriter, r *http.Request) {
	var view AddLinkView
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	target, err := uuid.Parse(view.Target)
	if err != nil {
		config.ErrorStatus("invalid link target", http.StatusBadRequest, w, err)
		return
	}
	l.addItem(w, r, func(loc *models.LocRequest, t time.Time) error {
		return loc.AddLink(models.LocLink{
			Target:      target.String(),
			Nature:      view.Nature,
			SubmittedOn: t,
			Draft:       true,
		})
	})
}

// addItem applies add to the case named in the url when the caller is a
// party of the case and the case still accepts items.
func (l LocRequest) addItem(w http.ResponseWriter, r *http.Request, add func(*models.LocRequest, time.Time) error) {
	loc, ok := l.find(w, r)
	if !ok {
		return
	}
	caller := api.AuthenticatedAddress(r.Context())
	if !l.Auth.IsNodeOwner(caller) && loc.RequesterAddress != caller {
		config.ErrorStatus("forbidden", http.StatusForbidden, w, errors.New("not a party of this loc request"))
		return
	}
	if loc.Status != models.LocRequested && loc.Status != models.LocOpen {
		config.ErrorStatus("loc request does not accept items", http.StatusBadRequest, w,
			fmt.Errorf("%s loc request: %w", loc.Status, models.ErrInvalidTransition))
		return
	}
	if err := add(loc, now(l.Now)); err != nil {
		config.ErrorStatus("failed to add item", http.StatusBadRequest, w, err)
		return
	}
	l.save(w, r, loc)
}

func (l LocRequest) find(w http.ResponseWriter, r *http.Request) (*models.LocRequest, bool) {
	requestID := mux.Vars(r)["request_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	loc, err := l.DB.FindByID(ctx, requestID)
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("loc request not found", http.StatusNotFound, w, err)
		return nil, false
	}
	if err != nil {
		config.ErrorStatus("failed to get loc request by ID", http.StatusInternalServerError, w, err)
		return nil, false
	}
	return loc, true
}

func (l LocRequest) save(w http.ResponseWriter, r *http.Request, loc *models.LocRequest) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := l.DB.Save(ctx, loc); err != nil {
		config.ErrorStatus("failed to save loc request", http.StatusInternalServerError, w, err)
		return
	}
	respond(w, http.StatusOK, loc)
}
