package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// LocRequestStatus is the lifecycle state of a case.
type LocRequestStatus string

// Case lifecycle states. REJECTED, CLOSED and VOID are terminal.
const (
	LocRequested LocRequestStatus = "REQUESTED"
	LocOpen      LocRequestStatus = "OPEN"
	LocRejected  LocRequestStatus = "REJECTED"
	LocClosed    LocRequestStatus = "CLOSED"
	LocVoid      LocRequestStatus = "VOID"
)

// LocType is the kind of case.
type LocType string

// Known case kinds.
const (
	LocTypeTransaction LocType = "Transaction"
	LocTypeIdentity    LocType = "Identity"
	LocTypeCollection  LocType = "Collection"
)

// Errors returned by LocRequest item and decision operations.
var (
	ErrDuplicateItem     = errors.New("item already exists")
	ErrMissingKey        = errors.New("item key is required")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// UserIdentity is the identity a requester declares when submitting a case.
type UserIdentity struct {
	FirstName   string `json:"firstName" bson:"firstName"`
	LastName    string `json:"lastName" bson:"lastName"`
	Email       string `json:"email" bson:"email"`
	PhoneNumber string `json:"phoneNumber" bson:"phoneNumber"`
}

// LocFile is a file of a case, keyed by content hash.
type LocFile struct {
	Hash        string     `json:"hash" bson:"hash"`
	Name        string     `json:"name" bson:"name"`
	ContentRef  string     `json:"cid" bson:"cid"`
	ContentType string     `json:"contentType" bson:"contentType"`
	Nature      string     `json:"nature" bson:"nature"`
	SubmittedOn time.Time  `json:"submittedOn" bson:"submittedOn"`
	AddedOn     *time.Time `json:"addedOn,omitempty" bson:"addedOn,omitempty"`
	Draft       bool       `json:"draft" bson:"draft"`
}

// LocMetadataItem is a metadata entry of a case, keyed by name.
type LocMetadataItem struct {
	Name        string     `json:"name" bson:"name"`
	Value       string     `json:"value" bson:"value"`
	SubmittedOn time.Time  `json:"submittedOn" bson:"submittedOn"`
	AddedOn     *time.Time `json:"addedOn,omitempty" bson:"addedOn,omitempty"`
	Draft       bool       `json:"draft" bson:"draft"`
}

// LocLink is a link from a case to another case, keyed by target identifier.
type LocLink struct {
	Target      string     `json:"target" bson:"target"`
	Nature      string     `json:"nature" bson:"nature"`
	SubmittedOn time.Time  `json:"submittedOn" bson:"submittedOn"`
	AddedOn     *time.Time `json:"addedOn,omitempty" bson:"addedOn,omitempty"`
	Draft       bool       `json:"draft" bson:"draft"`
}

// LocRequestRecord is the flat form of a case, as stored in the locrequests
// collection and returned by the API. Item slices are ordered by submission time.
type LocRequestRecord struct {
	ID               string            `json:"id" bson:"_id"`
	RequesterAddress string            `json:"requesterAddress" bson:"requesterAddress"`
	OwnerAddress     string            `json:"ownerAddress" bson:"ownerAddress"`
	Description      string            `json:"description" bson:"description"`
	LocType          LocType           `json:"locType" bson:"locType"`
	UserIdentity     *UserIdentity     `json:"userIdentity,omitempty" bson:"userIdentity,omitempty"`
	Status           LocRequestStatus  `json:"status" bson:"status"`
	CreatedOn        time.Time         `json:"createdOn" bson:"createdOn"`
	LocCreatedOn     *time.Time        `json:"locCreatedOn,omitempty" bson:"locCreatedOn,omitempty"`
	DecisionOn       *time.Time        `json:"decisionOn,omitempty" bson:"decisionOn,omitempty"`
	RejectReason     string            `json:"rejectReason,omitempty" bson:"rejectReason,omitempty"`
	ClosedOn         *time.Time        `json:"closedOn,omitempty" bson:"closedOn,omitempty"`
	VoidOn           *time.Time        `json:"voidOn,omitempty" bson:"voidOn,omitempty"`
	Files            []LocFile         `json:"files" bson:"files"`
	Metadata         []LocMetadataItem `json:"metadata" bson:"metadata"`
	Links            []LocLink         `json:"links" bson:"links"`
}

// LocRequest is a case together with its files, metadata items and links.
// Items are held in maps keyed by their natural key; a LocRequest is owned by
// one goroutine at a time and is not safe for concurrent use.
type LocRequest struct {
	ID               string
	RequesterAddress string
	OwnerAddress     string
	Description      string
	LocType          LocType
	UserIdentity     *UserIdentity
	Status           LocRequestStatus
	CreatedOn        time.Time
	LocCreatedOn     *time.Time
	DecisionOn       *time.Time
	RejectReason     string
	ClosedOn         *time.Time
	VoidOn           *time.Time

	files    map[string]*LocFile
	metadata map[string]*LocMetadataItem
	links    map[string]*LocLink
}

// NewLocRequest creates an empty case with the given identity and status.
func NewLocRequest(id, requester, owner string, status LocRequestStatus, createdOn time.Time) *LocRequest {
	return &LocRequest{
		ID:               id,
		RequesterAddress: requester,
		OwnerAddress:     owner,
		Status:           status,
		CreatedOn:        createdOn,
		files:            map[string]*LocFile{},
		metadata:         map[string]*LocMetadataItem{},
		links:            map[string]*LocLink{},
	}
}

// LocRequestFromRecord rebuilds a case from its stored form.
func LocRequestFromRecord(rec LocRequestRecord) (*LocRequest, error) {
	r := NewLocRequest(rec.ID, rec.RequesterAddress, rec.OwnerAddress, rec.Status, rec.CreatedOn)
	r.Description = rec.Description
	r.LocType = rec.LocType
	r.UserIdentity = rec.UserIdentity
	r.LocCreatedOn = rec.LocCreatedOn
	r.DecisionOn = rec.DecisionOn
	r.RejectReason = rec.RejectReason
	r.ClosedOn = rec.ClosedOn
	r.VoidOn = rec.VoidOn
	for _, f := range rec.Files {
		if err := r.AddFile(f); err != nil {
			return nil, fmt.Errorf("loc %s: %w", rec.ID, err)
		}
	}
	for _, m := range rec.Metadata {
		if err := r.AddMetadataItem(m); err != nil {
			return nil, fmt.Errorf("loc %s: %w", rec.ID, err)
		}
	}
	for _, l := range rec.Links {
		if err := r.AddLink(l); err != nil {
			return nil, fmt.Errorf("loc %s: %w", rec.ID, err)
		}
	}
	return r, nil
}

// Record returns the flat form of the case.
func (r *LocRequest) Record() LocRequestRecord {
	return LocRequestRecord{
		ID:               r.ID,
		RequesterAddress: r.RequesterAddress,
		OwnerAddress:     r.OwnerAddress,
		Description:      r.Description,
		LocType:          r.LocType,
		UserIdentity:     r.UserIdentity,
		Status:           r.Status,
		CreatedOn:        r.CreatedOn,
		LocCreatedOn:     r.LocCreatedOn,
		DecisionOn:       r.DecisionOn,
		RejectReason:     r.RejectReason,
		ClosedOn:         r.ClosedOn,
		VoidOn:           r.VoidOn,
		Files:            r.Files(),
		Metadata:         r.Metadata(),
		Links:            r.Links(),
	}
}

// MarshalJSON renders the case in its flat form.
func (r *LocRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Record())
}

func fileKey(hash string) string {
	return strings.ToLower(hash)
}

// AddFile adds a file. The hash must be set and not already present.
func (r *LocRequest) AddFile(f LocFile) error {
	if f.Hash == "" {
		return fmt.Errorf("file: %w", ErrMissingKey)
	}
	key := fileKey(f.Hash)
	if _, ok := r.files[key]; ok {
		return fmt.Errorf("file %s: %w", f.Hash, ErrDuplicateItem)
	}
	r.files[key] = &f
	return nil
}

// AddMetadataItem adds a metadata item. The name must be set and not already present.
func (r *LocRequest) AddMetadataItem(m LocMetadataItem) error {
	if m.Name == "" {
		return fmt.Errorf("metadata: %w", ErrMissingKey)
	}
	if _, ok := r.metadata[m.Name]; ok {
		return fmt.Errorf("metadata %s: %w", m.Name, ErrDuplicateItem)
	}
	r.metadata[m.Name] = &m
	return nil
}

// AddLink adds a link. The target must be set and not already present.
func (r *LocRequest) AddLink(l LocLink) error {
	if l.Target == "" {
		return fmt.Errorf("link: %w", ErrMissingKey)
	}
	if _, ok := r.links[l.Target]; ok {
		return fmt.Errorf("link %s: %w", l.Target, ErrDuplicateItem)
	}
	r.links[l.Target] = &l
	return nil
}

// File returns a copy of the file with the given hash.
func (r *LocRequest) File(hash string) (LocFile, bool) {
	f, ok := r.files[fileKey(hash)]
	if !ok {
		return LocFile{}, false
	}
	return *f, true
}

// MetadataItem returns a copy of the metadata item with the given name.
func (r *LocRequest) MetadataItem(name string) (LocMetadataItem, bool) {
	m, ok := r.metadata[name]
	if !ok {
		return LocMetadataItem{}, false
	}
	return *m, true
}

// Link returns a copy of the link to the given target.
func (r *LocRequest) Link(target string) (LocLink, bool) {
	l, ok := r.links[target]
	if !ok {
		return LocLink{}, false
	}
	return *l, true
}

// Files returns the files ordered by submission time.
func (r *LocRequest) Files() []LocFile {
	out := make([]LocFile, 0, len(r.files))
	for _, f := range r.files {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool {
		return submittedBefore(out[i].SubmittedOn, out[j].SubmittedOn, out[i].Hash, out[j].Hash)
	})
	return out
}

// Metadata returns the metadata items ordered by submission time.
func (r *LocRequest) Metadata() []LocMetadataItem {
	out := make([]LocMetadataItem, 0, len(r.metadata))
	for _, m := range r.metadata {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		return submittedBefore(out[i].SubmittedOn, out[j].SubmittedOn, out[i].Name, out[j].Name)
	})
	return out
}

// Links returns the links ordered by submission time.
func (r *LocRequest) Links() []LocLink {
	out := make([]LocLink, 0, len(r.links))
	for _, l := range r.links {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		return submittedBefore(out[i].SubmittedOn, out[j].SubmittedOn, out[i].Target, out[j].Target)
	})
	return out
}

func submittedBefore(a, b time.Time, keyA, keyB string) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return keyA < keyB
}

func stamp(dst **time.Time, t time.Time) {
	if *dst == nil {
		*dst = &t
	}
}

// SetLocCreatedDate records the on-chain creation of the case.
func (r *LocRequest) SetLocCreatedDate(t time.Time) {
	stamp(&r.LocCreatedOn, t)
}

// SetFileAddedOn records the on-chain confirmation of a file. It reports
// whether the file exists.
func (r *LocRequest) SetFileAddedOn(hash string, t time.Time) bool {
	f, ok := r.files[fileKey(hash)]
	if ok {
		stamp(&f.AddedOn, t)
	}
	return ok
}

// SetMetadataItemAddedOn records the on-chain confirmation of a metadata item.
// It reports whether the item exists.
func (r *LocRequest) SetMetadataItemAddedOn(name string, t time.Time) bool {
	m, ok := r.metadata[name]
	if ok {
		stamp(&m.AddedOn, t)
	}
	return ok
}

// SetLinkAddedOn records the on-chain confirmation of a link. It reports
// whether the link exists.
func (r *LocRequest) SetLinkAddedOn(target string, t time.Time) bool {
	l, ok := r.links[target]
	if ok {
		stamp(&l.AddedOn, t)
	}
	return ok
}

// Close marks the case closed. Closing a closed case does nothing.
func (r *LocRequest) Close(t time.Time) {
	if r.Status == LocClosed {
		return
	}
	r.Status = LocClosed
	stamp(&r.ClosedOn, t)
}

// Void marks the case void. Voiding a void case does nothing.
func (r *LocRequest) Void(t time.Time) {
	if r.Status == LocVoid {
		return
	}
	r.Status = LocVoid
	stamp(&r.VoidOn, t)
}

// Accept opens a requested case.
func (r *LocRequest) Accept(t time.Time) error {
	if r.Status != LocRequested {
		return fmt.Errorf("accept %s case: %w", r.Status, ErrInvalidTransition)
	}
	r.Status = LocOpen
	r.DecisionOn = &t
	return nil
}

// Reject refuses a requested case.
func (r *LocRequest) Reject(reason string, t time.Time) error {
	if r.Status != LocRequested {
		return fmt.Errorf("reject %s case: %w", r.Status, ErrInvalidTransition)
	}
	r.Status = LocRejected
	r.RejectReason = reason
	r.DecisionOn = &t
	return nil
}
