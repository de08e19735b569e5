package chain_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/legal-officer-api/chain"
)

const sidecarBlock = `{
  "number": "12",
  "hash": "0x1234",
  "extrinsics": [
    {
      "method": {"pallet": "timestamp", "method": "set"},
      "signature": null,
      "args": {"now": "1633024800000"},
      "tip": null,
      "info": {},
      "events": [],
      "success": true
    },
    {
      "method": {"pallet": "case-management", "method": "add-file"},
      "signature": {"signature": "0x00", "signer": {"id": "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"}},
      "args": {"loc_id": "1", "file": {"hash": "0xab", "nature": "0x00"}},
      "tip": "0",
      "info": {"partialFee": "125000000"},
      "events": [
        {"method": {"pallet": "balances", "method": "Reserved"}, "data": ["5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", "2000"]}
      ],
      "success": true
    },
    {
      "method": {"pallet": "case-management", "method": "close"},
      "signature": {"signature": "0x00", "signer": {"id": "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"}},
      "args": {"loc_id": "1"},
      "tip": "0",
      "info": {"partialFee": "125000000"},
      "events": [
        {"method": {"pallet": "system", "method": "ExtrinsicFailed"}, "data": [{"module": {"index": "8", "error": "0x03000000"}}, {}]}
      ],
      "success": false
    }
  ]
}`

func newSidecar(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/blocks/head", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"number":"12","hash":"0x1234"}`))
	})
	mux.HandleFunc("/blocks/12", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sidecarBlock))
	})
	mux.HandleFunc("/blocks/14", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"number":"14","hash":"0x5678","extrinsics":[]}`))
	})
	mux.HandleFunc("/blocks/13", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "block not found", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSidecarClient_Head(t *testing.T) {
	srv := newSidecar(t)
	c := chain.NewSidecarClient(srv.URL + "/")

	head, err := c.Head(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(12), head)
}

func TestSidecarClient_Block(t *testing.T) {
	srv := newSidecar(t)
	c := chain.NewSidecarClient(srv.URL)

	block, err := c.Block(context.Background(), 12)
	assert.NoError(t, err)
	assert.Equal(t, int64(12), block.Number)
	assert.Equal(t, "0x1234", block.Hash)
	assert.Equal(t, time.UnixMilli(1633024800000).UTC(), block.Timestamp)
	assert.Len(t, block.Extrinsics, 3)

	addFile := block.Extrinsics[1]
	assert.Equal(t, 1, addFile.Index)
	assert.Equal(t, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", addFile.Signer)
	assert.Equal(t, "125000000", addFile.Fee)
	assert.False(t, addFile.Failed())
	assert.Equal(t, []chain.Event{{Pallet: "balances", Method: "Reserved", Data: []chain.Value{
		chain.Value(`"5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"`),
		chain.Value(`"2000"`),
	}}}, addFile.Events)
	assert.Equal(t, "2000", addFile.Reserved("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"))
	call, err := chain.DecodeLocCall(addFile)
	assert.NoError(t, err)
	assert.Equal(t, "0xab", call.(chain.AddFile).Hash)

	closeCall := block.Extrinsics[2]
	assert.True(t, closeCall.Failed())
	assert.Equal(t, &chain.ExtrinsicError{Module: "module#8", Name: "0x03000000"}, closeCall.Error)
}

func TestSidecarClient_BlockError(t *testing.T) {
	srv := newSidecar(t)
	c := chain.NewSidecarClient(srv.URL)

	block, err := c.Block(context.Background(), 13)
	assert.Nil(t, block)
	assert.EqualError(t, err, "sidecar error (404): block not found")
}

func TestSidecarClient_BlockWithoutTimestamp(t *testing.T) {
	srv := newSidecar(t)
	c := chain.NewSidecarClient(srv.URL)

	block, err := c.Block(context.Background(), 14)
	assert.Nil(t, block)
	assert.EqualError(t, err, "block 14: no timestamp.set extrinsic")
}
