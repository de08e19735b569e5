package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/legal-officer-api/chain"
	"github.com/linesmerrill/legal-officer-api/databases"
	"github.com/linesmerrill/legal-officer-api/logging"
	"github.com/linesmerrill/legal-officer-api/metrics"
	"github.com/linesmerrill/legal-officer-api/models"
)

// SyncPointName identifies the block synchronization progress record.
const SyncPointName = "Transaction"

// DefaultBatchSize bounds the number of blocks one Sync call processes.
const DefaultBatchSize = 500

// DefaultMaxReplays is the number of runs a block with storage failures is
// retried before it is skipped.
const DefaultMaxReplays = 100

// ExtrinsicHandler mirrors one extrinsic of a block into local state. Only
// storage failures are returned; anything else is logged and skipped.
type ExtrinsicHandler interface {
	HandleExtrinsic(ctx context.Context, block *chain.Block, e chain.Extrinsic) error
}

// BlockSynchronizer feeds finalized blocks, in order, to the extrinsic handlers
// and tracks the last fully synchronized block.
type BlockSynchronizer struct {
	Source     chain.BlockSource
	SyncPoints databases.SyncPointDatabase
	Handlers   []ExtrinsicHandler
	BatchSize  int64
	MaxReplays int
	Metrics    *metrics.Metrics
	Logger     *zap.SugaredLogger
	now        func() time.Time

	failedBlock    int64
	failedAttempts int
}

// NewBlockSynchronizer creates a synchronizer reading from source.
func NewBlockSynchronizer(source chain.BlockSource, syncPoints databases.SyncPointDatabase, m *metrics.Metrics, handlers ...ExtrinsicHandler) *BlockSynchronizer {
	return &BlockSynchronizer{
		Source:     source,
		SyncPoints: syncPoints,
		Handlers:   handlers,
		BatchSize:  DefaultBatchSize,
		MaxReplays: DefaultMaxReplays,
		Metrics:    m,
		now:        time.Now,
	}
}

// Sync processes the blocks following the last synchronized one, up to the
// chain head or the batch size. Within a block, extrinsics are handled one
// after the other in chain order and a storage failure does not stop the
// remaining extrinsics. A block with storage failures is not recorded as
// synchronized, so the next call replays it, until MaxReplays attempts on the
// same block failed: the block is then logged as skipped and synchronization
// moves on. A MaxReplays of zero or less replays forever.
func (s *BlockSynchronizer) Sync(ctx context.Context) error {
	log := logging.Or(s.Logger, "blocksync")

	var last int64
	point, err := s.SyncPoints.Get(ctx, SyncPointName)
	switch {
	case errors.Is(err, databases.ErrNotFound):
	case err != nil:
		return fmt.Errorf("read sync point: %w", err)
	default:
		last = point.LatestHeadBlock
	}

	head, err := s.Source.Head(ctx)
	if err != nil {
		return fmt.Errorf("read chain head: %w", err)
	}
	if head <= last {
		return nil
	}
	end := head
	if s.BatchSize > 0 && end > last+s.BatchSize {
		end = last + s.BatchSize
	}
	log.Debugw("synchronizing blocks", "from", last+1, "to", end, "head", head)

	for n := last + 1; n <= end; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		block, err := s.Source.Block(ctx, n)
		if err != nil {
			s.Metrics.IncSyncFailure()
			return fmt.Errorf("fetch block %d: %w", n, err)
		}
		if failures := s.processBlock(ctx, log, block); failures > 0 {
			s.Metrics.IncSyncFailure()
			attempts := s.recordFailure(n)
			if s.MaxReplays <= 0 || attempts < s.MaxReplays {
				return fmt.Errorf("block %d: %d extrinsic(s) could not be stored", n, failures)
			}
			log.Errorw("skipping block after repeated storage failures", "block", n,
				"attempts", attempts, "failures", failures)
		}
		if err := s.SyncPoints.Save(ctx, &models.SyncPoint{
			Name:            SyncPointName,
			LatestHeadBlock: n,
			UpdatedOn:       s.clock(),
		}); err != nil {
			s.Metrics.IncSyncFailure()
			return fmt.Errorf("save sync point: %w", err)
		}
		s.Metrics.BlockSynced(n)
	}
	return nil
}

func (s *BlockSynchronizer) processBlock(ctx context.Context, log *zap.SugaredLogger, block *chain.Block) int {
	failures := 0
	for _, e := range block.Extrinsics {
		for _, h := range s.Handlers {
			if err := h.HandleExtrinsic(ctx, block, e); err != nil {
				failures++
				log.Errorw("extrinsic not synchronized", "block", block.Number, "index", e.Index,
					"extrinsic", e.String(), "error", err)
			}
		}
	}
	return failures
}

// recordFailure counts consecutive failed attempts on block n.
func (s *BlockSynchronizer) recordFailure(n int64) int {
	if s.failedBlock != n {
		s.failedBlock = n
		s.failedAttempts = 0
	}
	s.failedAttempts++
	return s.failedAttempts
}

func (s *BlockSynchronizer) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
