package models

import (
	"fmt"
	"time"
)

// ProtectionRequestStatus is the lifecycle state of a protection request.
type ProtectionRequestStatus string

// Protection request states.
const (
	ProtectionPending   ProtectionRequestStatus = "PENDING"
	ProtectionRejected  ProtectionRequestStatus = "REJECTED"
	ProtectionAccepted  ProtectionRequestStatus = "ACCEPTED"
	ProtectionActivated ProtectionRequestStatus = "ACTIVATED"
)

// ProtectionRequestKind filters requests by recovery flag.
type ProtectionRequestKind string

// Protection request kinds.
const (
	KindProtection ProtectionRequestKind = "PROTECTION_ONLY"
	KindRecovery   ProtectionRequestKind = "RECOVERY"
	KindAny        ProtectionRequestKind = "ANY"
)

// PostalAddress of a wallet user.
type PostalAddress struct {
	Line1      string `json:"line1" bson:"line1"`
	Line2      string `json:"line2" bson:"line2"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
	City       string `json:"city" bson:"city"`
	Country    string `json:"country" bson:"country"`
}

// LegalOfficerDecision holds the outcome of a legal officer's review.
type LegalOfficerDecision struct {
	RejectReason string     `json:"rejectReason" bson:"rejectReason"`
	DecisionOn   *time.Time `json:"decisionOn,omitempty" bson:"decisionOn,omitempty"`
	LocID        string     `json:"locId,omitempty" bson:"locId,omitempty"`
}

// ProtectionRequest holds the structure for the protectionrequests collection in mongo
type ProtectionRequest struct {
	ID                       string                  `json:"id" bson:"_id"`
	RequesterAddress         string                  `json:"requesterAddress" bson:"requesterAddress"`
	LegalOfficerAddress      string                  `json:"legalOfficerAddress" bson:"legalOfficerAddress"`
	OtherLegalOfficerAddress string                  `json:"otherLegalOfficerAddress" bson:"otherLegalOfficerAddress"`
	UserIdentity             UserIdentity            `json:"userIdentity" bson:"userIdentity"`
	UserPostalAddress        PostalAddress           `json:"userPostalAddress" bson:"userPostalAddress"`
	Decision                 LegalOfficerDecision    `json:"decision" bson:"decision"`
	CreatedOn                time.Time               `json:"createdOn" bson:"createdOn"`
	IsRecovery               bool                    `json:"isRecovery" bson:"isRecovery"`
	AddressToRecover         string                  `json:"addressToRecover,omitempty" bson:"addressToRecover,omitempty"`
	Status                   ProtectionRequestStatus `json:"status" bson:"status"`
}

// Accept records the legal officer's approval and the identity case backing it.
func (p *ProtectionRequest) Accept(t time.Time, locID string) error {
	if p.Status != ProtectionPending {
		return fmt.Errorf("accept %s request: %w", p.Status, ErrInvalidTransition)
	}
	p.Status = ProtectionAccepted
	p.Decision = LegalOfficerDecision{DecisionOn: &t, LocID: locID}
	return nil
}

// Reject records the legal officer's refusal.
func (p *ProtectionRequest) Reject(reason string, t time.Time) error {
	if p.Status != ProtectionPending {
		return fmt.Errorf("reject %s request: %w", p.Status, ErrInvalidTransition)
	}
	p.Status = ProtectionRejected
	p.Decision = LegalOfficerDecision{RejectReason: reason, DecisionOn: &t}
	return nil
}

// Activate marks an accepted request as set up on chain. Activating an
// active request does nothing.
func (p *ProtectionRequest) Activate() error {
	switch p.Status {
	case ProtectionActivated:
		return nil
	case ProtectionAccepted:
		p.Status = ProtectionActivated
		return nil
	}
	return fmt.Errorf("activate %s request: %w", p.Status, ErrInvalidTransition)
}

// FetchProtectionRequestsSpecification selects protection requests.
type FetchProtectionRequestsSpecification struct {
	RequesterAddress string                    `json:"requesterAddress"`
	Statuses         []ProtectionRequestStatus `json:"statuses"`
	Kind             ProtectionRequestKind     `json:"kind"`
}

// FetchLocRequestsSpecification selects cases.
type FetchLocRequestsSpecification struct {
	RequesterAddress string             `json:"requesterAddress"`
	OwnerAddress     string             `json:"ownerAddress"`
	Statuses         []LocRequestStatus `json:"statuses"`
}
