package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/linesmerrill/legal-officer-api/chain"
	"github.com/linesmerrill/legal-officer-api/databases"
	"github.com/linesmerrill/legal-officer-api/databases/mocks"
	"github.com/linesmerrill/legal-officer-api/models"
	"github.com/linesmerrill/legal-officer-api/services"
)

const (
	locDecimal = "170273579730871748980786988060771154746"
	locID      = "80197fa3-de13-4a5e-9a77-d0a11a0cfb3a"
	linkTarget = "00000000-0000-0000-0000-000000000002"
)

var (
	submittedOn = time.Date(2021, 9, 30, 10, 0, 0, 0, time.UTC)
	blockTime   = time.Date(2021, 10, 1, 12, 0, 0, 0, time.UTC)
)

type recordingListener struct {
	ids []string
}

func (l *recordingListener) LocSynchronized(loc *models.LocRequest) {
	l.ids = append(l.ids, loc.ID)
}

func locExtrinsic(t *testing.T, method, args string) chain.Extrinsic {
	t.Helper()
	var a chain.Args
	require.NoError(t, json.Unmarshal([]byte(args), &a))
	return chain.Extrinsic{Pallet: chain.LocPallet, Method: method, Args: a, Signer: "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"}
}

func openLoc(t *testing.T) *models.LocRequest {
	t.Helper()
	loc := models.NewLocRequest(locID, "requester", "owner", models.LocOpen, submittedOn)
	require.NoError(t, loc.AddFile(models.LocFile{Hash: "0xAB", Name: "contract.pdf", SubmittedOn: submittedOn}))
	require.NoError(t, loc.AddMetadataItem(models.LocMetadataItem{Name: "Name", Value: "Alice", SubmittedOn: submittedOn}))
	require.NoError(t, loc.AddLink(models.LocLink{Target: linkTarget, Nature: "previous", SubmittedOn: submittedOn}))
	return loc
}

func newLocSynchronizer(db databases.LocRequestDatabase) (*services.LocSynchronizer, *observer.ObservedLogs, *recordingListener) {
	core, logs := observer.New(zap.DebugLevel)
	listener := &recordingListener{}
	s := services.NewLocSynchronizer(db, listener, nil)
	s.Logger = zap.New(core).Sugar()
	return s, logs, listener
}

func TestLocSynchronizer_AddFile(t *testing.T) {
	loc := openLoc(t)
	before := loc.Record()
	db := &mocks.LocRequestDatabase{}
	db.On("FindByID", mock.Anything, locID).Return(loc, nil)
	db.On("Save", mock.Anything, loc).Return(nil).Once()

	s, _, listener := newLocSynchronizer(db)
	err := s.UpdateLocRequests(context.Background(),
		locExtrinsic(t, chain.MethodAddFile, `{"loc_id":"`+locDecimal+`","file":{"hash":"0xab","nature":"0x00"}}`), blockTime)

	assert.NoError(t, err)
	f, ok := loc.File("0xAB")
	require.True(t, ok)
	assert.Equal(t, blockTime, *f.AddedOn)

	after := loc.Record()
	after.Files[0].AddedOn = nil
	assert.Equal(t, before, after)
	assert.Equal(t, []string{locID}, listener.ids)
	db.AssertExpectations(t)
}

func TestLocSynchronizer_CloseThenVoid(t *testing.T) {
	loc := openLoc(t)
	voidTime := blockTime.Add(time.Hour)
	db := &mocks.LocRequestDatabase{}
	db.On("FindByID", mock.Anything, locID).Return(loc, nil)
	db.On("Save", mock.Anything, loc).Return(nil).Twice()

	s, _, _ := newLocSynchronizer(db)
	args := `{"loc_id":"` + locDecimal + `"}`

	assert.NoError(t, s.UpdateLocRequests(context.Background(), locExtrinsic(t, chain.MethodClose, args), blockTime))
	assert.Equal(t, models.LocClosed, loc.Status)
	assert.Equal(t, blockTime, *loc.ClosedOn)

	assert.NoError(t, s.UpdateLocRequests(context.Background(), locExtrinsic(t, chain.MethodMakeVoid, args), voidTime))
	assert.Equal(t, models.LocVoid, loc.Status)
	assert.Equal(t, voidTime, *loc.VoidOn)
	assert.Equal(t, blockTime, *loc.ClosedOn)
	db.AssertExpectations(t)
}

func TestLocSynchronizer_VoidAndReplace(t *testing.T) {
	loc := openLoc(t)
	db := &mocks.LocRequestDatabase{}
	db.On("FindByID", mock.Anything, locID).Return(loc, nil)
	db.On("Save", mock.Anything, loc).Return(nil).Once()

	s, _, _ := newLocSynchronizer(db)
	err := s.UpdateLocRequests(context.Background(),
		locExtrinsic(t, chain.MethodMakeVoidAndReplace, `{"loc_id":"`+locDecimal+`","replacer_loc_id":"3"}`), blockTime)

	assert.NoError(t, err)
	assert.Equal(t, models.LocVoid, loc.Status)
	assert.Equal(t, blockTime, *loc.VoidOn)
}

func TestLocSynchronizer_CreateAndConfirmItems(t *testing.T) {
	loc := openLoc(t)
	db := &mocks.LocRequestDatabase{}
	db.On("FindByID", mock.Anything, locID).Return(loc, nil)
	db.On("Save", mock.Anything, loc).Return(nil)

	s, _, _ := newLocSynchronizer(db)
	ctx := context.Background()
	id := `"loc_id":"` + locDecimal + `"`

	assert.NoError(t, s.UpdateLocRequests(ctx, locExtrinsic(t, chain.MethodCreateLoc, `{`+id+`}`), blockTime))
	assert.NoError(t, s.UpdateLocRequests(ctx, locExtrinsic(t, chain.MethodAddMetadata, `{`+id+`,"item":{"name":"0x4e616d65","value":"0x416c696365"}}`), blockTime))
	assert.NoError(t, s.UpdateLocRequests(ctx, locExtrinsic(t, chain.MethodAddLink, `{`+id+`,"link":{"id":"2","nature":"0x00"}}`), blockTime))

	assert.Equal(t, blockTime, *loc.LocCreatedOn)
	m, _ := loc.MetadataItem("Name")
	assert.Equal(t, blockTime, *m.AddedOn)
	l, _ := loc.Link(linkTarget)
	assert.Equal(t, blockTime, *l.AddedOn)
	db.AssertNumberOfCalls(t, "Save", 3)
}

func TestLocSynchronizer_Idempotent(t *testing.T) {
	loc := openLoc(t)
	db := &mocks.LocRequestDatabase{}
	db.On("FindByID", mock.Anything, locID).Return(loc, nil)
	db.On("Save", mock.Anything, loc).Return(nil)

	s, _, _ := newLocSynchronizer(db)
	e := locExtrinsic(t, chain.MethodAddFile, `{"loc_id":"`+locDecimal+`","file":{"hash":"0xab"}}`)

	assert.NoError(t, s.UpdateLocRequests(context.Background(), e, blockTime))
	once := loc.Record()
	assert.NoError(t, s.UpdateLocRequests(context.Background(), e, blockTime))
	assert.Equal(t, once, loc.Record())
}

func TestLocSynchronizer_AddFileBeforeCreateCase(t *testing.T) {
	loc := openLoc(t)
	db := &mocks.LocRequestDatabase{}
	db.On("FindByID", mock.Anything, locID).Return(loc, nil)
	db.On("Save", mock.Anything, loc).Return(nil)

	s, _, _ := newLocSynchronizer(db)
	err := s.UpdateLocRequests(context.Background(),
		locExtrinsic(t, chain.MethodAddFile, `{"loc_id":"`+locDecimal+`","file":{"hash":"0xab"}}`), blockTime)

	assert.NoError(t, err)
	assert.Nil(t, loc.LocCreatedOn)
	f, _ := loc.File("0xab")
	assert.Equal(t, blockTime, *f.AddedOn)
}

func TestLocSynchronizer_UnknownItemsAreNoOps(t *testing.T) {
	tests := []struct {
		name   string
		method string
		args   string
	}{
		{name: "metadata never submitted", method: chain.MethodAddMetadata, args: `{"loc_id":"` + locDecimal + `","item":{"name":"0x556e6b6e6f776e"}}`},
		{name: "file never submitted", method: chain.MethodAddFile, args: `{"loc_id":"` + locDecimal + `","file":{"hash":"0xcd"}}`},
		{name: "link never submitted", method: chain.MethodAddLink, args: `{"loc_id":"` + locDecimal + `","link":{"id":"9"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := openLoc(t)
			before := loc.Record()
			db := &mocks.LocRequestDatabase{}
			db.On("FindByID", mock.Anything, locID).Return(loc, nil)

			s, logs, listener := newLocSynchronizer(db)
			err := s.UpdateLocRequests(context.Background(), locExtrinsic(t, tt.method, tt.args), blockTime)

			assert.NoError(t, err)
			assert.Equal(t, before, loc.Record())
			db.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			assert.Empty(t, listener.ids)
			assert.Equal(t, 1, logs.FilterMessage("item not found").Len())
		})
	}
}

func TestLocSynchronizer_FailedExtrinsic(t *testing.T) {
	for _, method := range []string{chain.MethodCreateLoc, chain.MethodClose, chain.MethodMakeVoid, chain.MethodAddFile} {
		t.Run(method, func(t *testing.T) {
			db := &mocks.LocRequestDatabase{}
			s, logs, _ := newLocSynchronizer(db)

			e := locExtrinsic(t, method, `{"loc_id":"`+locDecimal+`","file":{"hash":"0xab"}}`)
			e.Error = &chain.ExtrinsicError{Module: "case-management", Name: "Unauthorized"}

			assert.NoError(t, s.UpdateLocRequests(context.Background(), e, blockTime))
			db.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
			db.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			assert.Equal(t, 1, logs.FilterMessage("skipping failed extrinsic").FilterField(zap.String("extrinsic", e.String())).Len())
		})
	}
}

func TestLocSynchronizer_IgnoresOtherCalls(t *testing.T) {
	db := &mocks.LocRequestDatabase{}
	s, _, _ := newLocSynchronizer(db)

	assert.NoError(t, s.UpdateLocRequests(context.Background(), chain.Extrinsic{Pallet: "balances", Method: "transfer"}, blockTime))
	assert.NoError(t, s.UpdateLocRequests(context.Background(), locExtrinsic(t, "nominate-issuer", `{"loc_id":"1"}`), blockTime))
	db.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestLocSynchronizer_DecodeErrorIsContained(t *testing.T) {
	db := &mocks.LocRequestDatabase{}
	s, logs, _ := newLocSynchronizer(db)

	err := s.UpdateLocRequests(context.Background(), locExtrinsic(t, chain.MethodAddFile, `{"loc_id":"not-a-number"}`), blockTime)

	assert.NoError(t, err)
	entries := logs.FilterMessage("cannot decode extrinsic").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	db.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestLocSynchronizer_CaseNotFound(t *testing.T) {
	db := &mocks.LocRequestDatabase{}
	db.On("FindByID", mock.Anything, locID).Return(nil, databases.ErrNotFound)
	s, logs, _ := newLocSynchronizer(db)

	err := s.UpdateLocRequests(context.Background(), locExtrinsic(t, chain.MethodClose, `{"loc_id":"`+locDecimal+`"}`), blockTime)

	assert.NoError(t, err)
	entries := logs.FilterMessage("case not found").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	db.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLocSynchronizer_StorageErrorIsReturned(t *testing.T) {
	loc := openLoc(t)
	storageErr := &databases.StorageError{Op: "save loc request", Err: databases.ErrConstraintViolation}
	db := &mocks.LocRequestDatabase{}
	db.On("FindByID", mock.Anything, locID).Return(loc, nil)
	db.On("Save", mock.Anything, loc).Return(storageErr)
	s, _, listener := newLocSynchronizer(db)

	err := s.UpdateLocRequests(context.Background(), locExtrinsic(t, chain.MethodClose, `{"loc_id":"`+locDecimal+`"}`), blockTime)

	assert.True(t, errors.Is(err, databases.ErrConstraintViolation))
	assert.Empty(t, listener.ids)
}
