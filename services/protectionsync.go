package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/linesmerrill/legal-officer-api/chain"
	"github.com/linesmerrill/legal-officer-api/databases"
	"github.com/linesmerrill/legal-officer-api/logging"
	"github.com/linesmerrill/legal-officer-api/metrics"
	"github.com/linesmerrill/legal-officer-api/models"
)

// Recovery pallet call that sets up the protection of an account.
const (
	RecoveryPallet       = "recovery"
	MethodCreateRecovery = "create-recovery"
)

// ProtectionSynchronizer activates accepted protection requests once their
// requester has configured recovery on chain.
type ProtectionSynchronizer struct {
	DB      databases.ProtectionRequestDatabase
	Metrics *metrics.Metrics
	Logger  *zap.SugaredLogger
}

// NewProtectionSynchronizer creates a synchronizer writing to db.
func NewProtectionSynchronizer(db databases.ProtectionRequestDatabase, m *metrics.Metrics) *ProtectionSynchronizer {
	return &ProtectionSynchronizer{DB: db, Metrics: m}
}

// HandleExtrinsic implements ExtrinsicHandler.
func (s *ProtectionSynchronizer) HandleExtrinsic(ctx context.Context, _ *chain.Block, e chain.Extrinsic) error {
	return s.UpdateProtectionRequests(ctx, e)
}

// UpdateProtectionRequests activates the signer's accepted requests when e is
// a successful create-recovery call.
func (s *ProtectionSynchronizer) UpdateProtectionRequests(ctx context.Context, e chain.Extrinsic) error {
	if e.Pallet != RecoveryPallet || e.Method != MethodCreateRecovery {
		return nil
	}
	log := logging.Or(s.Logger, "protectionsync")
	if e.Failed() {
		log.Infow("skipping failed extrinsic", "extrinsic", e.String())
		s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeFailed)
		return nil
	}
	if e.Signer == "" {
		log.Warnw("unsigned recovery extrinsic", "extrinsic", e.String())
		s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeDecodeError)
		return nil
	}

	requests, err := s.DB.FindBy(ctx, models.FetchProtectionRequestsSpecification{
		RequesterAddress: e.Signer,
		Statuses:         []models.ProtectionRequestStatus{models.ProtectionAccepted},
	})
	if err != nil {
		s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeStorageError)
		return err
	}
	if len(requests) == 0 {
		log.Infow("no accepted protection request", "requester", e.Signer)
		s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeNotFound)
		return nil
	}

	for i := range requests {
		request := &requests[i]
		if err := request.Activate(); err != nil {
			log.Warnw("cannot activate protection request", "id", request.ID, "error", err)
			continue
		}
		if err := s.DB.Save(ctx, request); err != nil {
			log.Errorw("failed to save protection request", "id", request.ID, "error", err)
			s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeStorageError)
			return err
		}
		log.Infow("protection request activated", "id", request.ID, "requester", e.Signer)
	}
	s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeApplied)
	return nil
}
