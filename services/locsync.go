package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/legal-officer-api/chain"
	"github.com/linesmerrill/legal-officer-api/databases"
	"github.com/linesmerrill/legal-officer-api/logging"
	"github.com/linesmerrill/legal-officer-api/metrics"
	"github.com/linesmerrill/legal-officer-api/models"
)

// LocListener is told about every case a synchronizer saved.
type LocListener interface {
	LocSynchronized(loc *models.LocRequest)
}

// LocSynchronizer mirrors confirmed case-management calls onto stored cases.
type LocSynchronizer struct {
	DB       databases.LocRequestDatabase
	Listener LocListener
	Metrics  *metrics.Metrics
	Logger   *zap.SugaredLogger
}

// NewLocSynchronizer creates a synchronizer writing to db.
func NewLocSynchronizer(db databases.LocRequestDatabase, listener LocListener, m *metrics.Metrics) *LocSynchronizer {
	return &LocSynchronizer{
		DB:       db,
		Listener: listener,
		Metrics:  m,
	}
}

// HandleExtrinsic implements ExtrinsicHandler.
func (s *LocSynchronizer) HandleExtrinsic(ctx context.Context, block *chain.Block, e chain.Extrinsic) error {
	return s.UpdateLocRequests(ctx, e, block.Timestamp)
}

// UpdateLocRequests applies one extrinsic, confirmed at timestamp t, to the
// case it targets. Calls of other pallets, failed calls, undecodable calls
// and calls on unknown cases or items are skipped. Only storage failures are
// returned.
func (s *LocSynchronizer) UpdateLocRequests(ctx context.Context, e chain.Extrinsic, t time.Time) error {
	if e.Pallet != chain.LocPallet {
		return nil
	}
	log := logging.Or(s.Logger, "locsync")

	if e.Failed() {
		log.Infow("skipping failed extrinsic", "extrinsic", e.String())
		s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeFailed)
		return nil
	}

	call, err := chain.DecodeLocCall(e)
	if errors.Is(err, chain.ErrUnsupportedCall) {
		log.Debugw("ignoring extrinsic", "extrinsic", e.String())
		s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeIgnored)
		return nil
	}
	if err != nil {
		log.Warnw("cannot decode extrinsic", "extrinsic", e.String(), "error", err)
		s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeDecodeError)
		return nil
	}

	return s.apply(ctx, log, e, call, t)
}

func (s *LocSynchronizer) apply(ctx context.Context, log *zap.SugaredLogger, e chain.Extrinsic, call chain.LocCall, t time.Time) error {
	loc, err := s.DB.FindByID(ctx, call.LocID())
	if errors.Is(err, databases.ErrNotFound) {
		log.Infow("case not found", "locId", call.LocID(), "extrinsic", e.String())
		s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeNotFound)
		return nil
	}
	if err != nil {
		s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeStorageError)
		return err
	}

	found := true
	switch c := call.(type) {
	case chain.CreateLoc:
		loc.SetLocCreatedDate(t)
	case chain.AddMetadata:
		found = loc.SetMetadataItemAddedOn(c.Name, t)
	case chain.AddFile:
		found = loc.SetFileAddedOn(c.Hash, t)
	case chain.AddLink:
		found = loc.SetLinkAddedOn(c.Target, t)
	case chain.CloseLoc:
		loc.Close(t)
	case chain.VoidLoc:
		loc.Void(t)
	}
	if !found {
		log.Infow("item not found", "locId", loc.ID, "extrinsic", e.String())
		s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeNotFound)
		return nil
	}

	if err := s.DB.Save(ctx, loc); err != nil {
		log.Errorw("failed to save case", "locId", loc.ID, "extrinsic", e.String(), "error", err)
		s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeStorageError)
		return err
	}
	s.Metrics.IncExtrinsic(e.Pallet, metrics.OutcomeApplied)
	if s.Listener != nil {
		s.Listener.LocSynchronized(loc)
	}
	return nil
}
