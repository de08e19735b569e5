package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/linesmerrill/legal-officer-api/chain"
	"github.com/linesmerrill/legal-officer-api/databases"
	"github.com/linesmerrill/legal-officer-api/databases/mocks"
	"github.com/linesmerrill/legal-officer-api/metrics"
	"github.com/linesmerrill/legal-officer-api/models"
	"github.com/linesmerrill/legal-officer-api/services"
)

type fakeSource struct {
	head   int64
	blocks map[int64]*chain.Block
}

func (f *fakeSource) Head(context.Context) (int64, error) {
	return f.head, nil
}

func (f *fakeSource) Block(_ context.Context, n int64) (*chain.Block, error) {
	b, ok := f.blocks[n]
	if !ok {
		return nil, fmt.Errorf("block %d unavailable", n)
	}
	return b, nil
}

type seenExtrinsic struct {
	block int64
	index int
}

type recordingHandler struct {
	seen    []seenExtrinsic
	failing map[seenExtrinsic]bool
}

func (h *recordingHandler) HandleExtrinsic(_ context.Context, block *chain.Block, e chain.Extrinsic) error {
	key := seenExtrinsic{block: block.Number, index: e.Index}
	h.seen = append(h.seen, key)
	if h.failing[key] {
		return &databases.StorageError{Op: "save", Err: errors.New("mocked-error")}
	}
	return nil
}

func blockWith(n int64, extrinsics int) *chain.Block {
	b := &chain.Block{Number: n, Timestamp: time.Unix(n*6, 0).UTC()}
	for i := 0; i < extrinsics; i++ {
		b.Extrinsics = append(b.Extrinsics, chain.Extrinsic{Index: i, Pallet: chain.LocPallet, Method: chain.MethodClose})
	}
	return b
}

func savedHeight(n int64) interface{} {
	return mock.MatchedBy(func(p *models.SyncPoint) bool {
		return p.Name == services.SyncPointName && p.LatestHeadBlock == n
	})
}

func TestBlockSynchronizer_ProcessesBlocksInOrder(t *testing.T) {
	source := &fakeSource{head: 3, blocks: map[int64]*chain.Block{
		2: blockWith(2, 2),
		3: blockWith(3, 1),
	}}
	syncPoints := &mocks.SyncPointDatabase{}
	syncPoints.On("Get", mock.Anything, services.SyncPointName).Return(&models.SyncPoint{Name: services.SyncPointName, LatestHeadBlock: 1}, nil)
	syncPoints.On("Save", mock.Anything, savedHeight(2)).Return(nil).Once()
	syncPoints.On("Save", mock.Anything, savedHeight(3)).Return(nil).Once()

	handler := &recordingHandler{}
	m := metrics.New(prometheus.NewRegistry())
	s := services.NewBlockSynchronizer(source, syncPoints, m, handler)

	assert.NoError(t, s.Sync(context.Background()))
	assert.Equal(t, []seenExtrinsic{{2, 0}, {2, 1}, {3, 0}}, handler.seen)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SyncHeight))
	syncPoints.AssertExpectations(t)
}

func TestBlockSynchronizer_StartsFromGenesis(t *testing.T) {
	source := &fakeSource{head: 1, blocks: map[int64]*chain.Block{1: blockWith(1, 1)}}
	syncPoints := &mocks.SyncPointDatabase{}
	syncPoints.On("Get", mock.Anything, services.SyncPointName).Return(nil, databases.ErrNotFound)
	syncPoints.On("Save", mock.Anything, savedHeight(1)).Return(nil).Once()

	handler := &recordingHandler{}
	s := services.NewBlockSynchronizer(source, syncPoints, nil, handler)

	assert.NoError(t, s.Sync(context.Background()))
	assert.Len(t, handler.seen, 1)
	syncPoints.AssertExpectations(t)
}

func TestBlockSynchronizer_StorageErrorKeepsBlockForReplay(t *testing.T) {
	source := &fakeSource{head: 3, blocks: map[int64]*chain.Block{
		1: blockWith(1, 3),
		2: blockWith(2, 1),
	}}
	syncPoints := &mocks.SyncPointDatabase{}
	syncPoints.On("Get", mock.Anything, services.SyncPointName).Return(nil, databases.ErrNotFound)

	handler := &recordingHandler{failing: map[seenExtrinsic]bool{{1, 1}: true}}
	s := services.NewBlockSynchronizer(source, syncPoints, nil, handler)

	err := s.Sync(context.Background())

	assert.EqualError(t, err, "block 1: 1 extrinsic(s) could not be stored")
	assert.Equal(t, []seenExtrinsic{{1, 0}, {1, 1}, {1, 2}}, handler.seen)
	syncPoints.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBlockSynchronizer_SkipsBlockAfterMaxReplays(t *testing.T) {
	source := &fakeSource{head: 2, blocks: map[int64]*chain.Block{
		1: blockWith(1, 2),
		2: blockWith(2, 1),
	}}
	syncPoints := &mocks.SyncPointDatabase{}
	syncPoints.On("Get", mock.Anything, services.SyncPointName).Return(nil, databases.ErrNotFound)
	syncPoints.On("Save", mock.Anything, savedHeight(1)).Return(nil).Once()
	syncPoints.On("Save", mock.Anything, savedHeight(2)).Return(nil).Once()

	handler := &recordingHandler{failing: map[seenExtrinsic]bool{{1, 0}: true}}
	m := metrics.New(prometheus.NewRegistry())
	s := services.NewBlockSynchronizer(source, syncPoints, m, handler)
	s.MaxReplays = 2

	assert.EqualError(t, s.Sync(context.Background()), "block 1: 1 extrinsic(s) could not be stored")
	syncPoints.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

	assert.NoError(t, s.Sync(context.Background()))
	assert.Equal(t, []seenExtrinsic{{1, 0}, {1, 1}, {1, 0}, {1, 1}, {2, 0}}, handler.seen)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SyncFailures))
	syncPoints.AssertExpectations(t)
}

func TestBlockSynchronizer_BatchSize(t *testing.T) {
	source := &fakeSource{head: 100, blocks: map[int64]*chain.Block{
		11: blockWith(11, 0),
		12: blockWith(12, 0),
	}}
	syncPoints := &mocks.SyncPointDatabase{}
	syncPoints.On("Get", mock.Anything, services.SyncPointName).Return(&models.SyncPoint{LatestHeadBlock: 10}, nil)
	syncPoints.On("Save", mock.Anything, mock.Anything).Return(nil)

	s := services.NewBlockSynchronizer(source, syncPoints, nil)
	s.BatchSize = 2

	assert.NoError(t, s.Sync(context.Background()))
	syncPoints.AssertNumberOfCalls(t, "Save", 2)
}

func TestBlockSynchronizer_UpToDate(t *testing.T) {
	source := &fakeSource{head: 5}
	syncPoints := &mocks.SyncPointDatabase{}
	syncPoints.On("Get", mock.Anything, services.SyncPointName).Return(&models.SyncPoint{LatestHeadBlock: 5}, nil)

	s := services.NewBlockSynchronizer(source, syncPoints, nil)
	assert.NoError(t, s.Sync(context.Background()))
	syncPoints.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBlockSynchronizer_FetchError(t *testing.T) {
	source := &fakeSource{head: 2, blocks: map[int64]*chain.Block{}}
	syncPoints := &mocks.SyncPointDatabase{}
	syncPoints.On("Get", mock.Anything, services.SyncPointName).Return(&models.SyncPoint{LatestHeadBlock: 1}, nil)

	s := services.NewBlockSynchronizer(source, syncPoints, nil)
	assert.EqualError(t, s.Sync(context.Background()), "fetch block 2: block 2 unavailable")
}
