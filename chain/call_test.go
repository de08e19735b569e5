package chain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/legal-officer-api/chain"
)

func extrinsic(t *testing.T, method, args string) chain.Extrinsic {
	t.Helper()
	var a chain.Args
	if err := json.Unmarshal([]byte(args), &a); err != nil {
		t.Fatalf("bad test args: %v", err)
	}
	return chain.Extrinsic{Pallet: chain.LocPallet, Method: method, Args: a}
}

func TestDecodeLocCall(t *testing.T) {
	call, err := chain.DecodeLocCall(extrinsic(t, chain.MethodCreateLoc, `{"loc_id":"1"}`))
	assert.NoError(t, err)
	assert.IsType(t, chain.CreateLoc{}, call)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", call.LocID())

	call, err = chain.DecodeLocCall(extrinsic(t, chain.MethodAddMetadata, `{"loc_id":2,"item":{"name":"0x4e616d65","value":"0x00"}}`))
	assert.NoError(t, err)
	assert.Equal(t, "Name", call.(chain.AddMetadata).Name)
	assert.Equal(t, "00000000-0000-0000-0000-000000000002", call.LocID())

	call, err = chain.DecodeLocCall(extrinsic(t, chain.MethodAddMetadata, `{"loc_id":"2","item":{"name":[78,97,109,101]}}`))
	assert.NoError(t, err)
	assert.Equal(t, "Name", call.(chain.AddMetadata).Name)

	call, err = chain.DecodeLocCall(extrinsic(t, chain.MethodAddFile, `{"loc_id":"3","file":{"hash":"0xAB"}}`))
	assert.NoError(t, err)
	assert.Equal(t, "0xab", call.(chain.AddFile).Hash)

	call, err = chain.DecodeLocCall(extrinsic(t, chain.MethodAddLink, `{"loc_id":"3","link":{"id":"255"}}`))
	assert.NoError(t, err)
	assert.Equal(t, "00000000-0000-0000-0000-0000000000ff", call.(chain.AddLink).Target)

	call, err = chain.DecodeLocCall(extrinsic(t, chain.MethodClose, `{"loc_id":"4"}`))
	assert.NoError(t, err)
	assert.IsType(t, chain.CloseLoc{}, call)

	call, err = chain.DecodeLocCall(extrinsic(t, chain.MethodMakeVoid, `{"loc_id":"4","void_info":{}}`))
	assert.NoError(t, err)
	assert.False(t, call.(chain.VoidLoc).Replaced)

	call, err = chain.DecodeLocCall(extrinsic(t, chain.MethodMakeVoidAndReplace, `{"loc_id":"4","replacer_loc_id":"5"}`))
	assert.NoError(t, err)
	assert.True(t, call.(chain.VoidLoc).Replaced)
}

func TestDecodeLocCall_Unsupported(t *testing.T) {
	_, err := chain.DecodeLocCall(chain.Extrinsic{Pallet: "balances", Method: "transfer"})
	assert.True(t, errors.Is(err, chain.ErrUnsupportedCall))

	_, err = chain.DecodeLocCall(extrinsic(t, "nominate-issuer", `{"loc_id":"1"}`))
	assert.True(t, errors.Is(err, chain.ErrUnsupportedCall))
}

func TestDecodeLocCall_BadArguments(t *testing.T) {
	tests := []struct {
		name   string
		method string
		args   string
		path   string
	}{
		{name: "missing loc id", method: chain.MethodClose, args: `{}`, path: "loc_id"},
		{name: "non numeric loc id", method: chain.MethodClose, args: `{"loc_id":"abc"}`, path: "loc_id"},
		{name: "missing file", method: chain.MethodAddFile, args: `{"loc_id":"1"}`, path: "file.hash"},
		{name: "file hash not hex", method: chain.MethodAddFile, args: `{"loc_id":"1","file":{"hash":"zz"}}`, path: "file.hash"},
		{name: "metadata name not utf8", method: chain.MethodAddMetadata, args: `{"loc_id":"1","item":{"name":"0xff"}}`, path: "item.name"},
		{name: "link target null", method: chain.MethodAddLink, args: `{"loc_id":"1","link":{"id":null}}`, path: "link.id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chain.DecodeLocCall(extrinsic(t, tt.method, tt.args))
			var argErr *chain.ArgumentDecodeError
			if assert.True(t, errors.As(err, &argErr)) {
				assert.Equal(t, tt.path, argErr.Path)
			}
		})
	}
}

func TestExtrinsic_String(t *testing.T) {
	e := chain.Extrinsic{
		Pallet: chain.LocPallet,
		Method: chain.MethodClose,
		Signer: "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
		Error:  &chain.ExtrinsicError{Module: "case-management", Name: "AlreadyClosed"},
	}
	assert.True(t, e.Failed())
	assert.Equal(t, "case-management.close signed by 5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY failed with case-management.AlreadyClosed", e.String())
}

func TestArgs_DecimalAndAccount(t *testing.T) {
	var a chain.Args
	assert.NoError(t, json.Unmarshal([]byte(`{"value":"1000000000000000000000","dest":{"id":"5CXLTF2PFBE89tTYsrofGPkSfGTdmW4ciw4vAfgcKhjggRgZ"}}`), &a))

	v, err := a.Decimal("value")
	assert.NoError(t, err)
	assert.Equal(t, "1000000000000000000000", v)

	dest, err := a.Account("dest.id")
	assert.NoError(t, err)
	assert.Equal(t, "5CXLTF2PFBE89tTYsrofGPkSfGTdmW4ciw4vAfgcKhjggRgZ", dest)

	_, err = a.Account("value.id")
	assert.Error(t, err)
}
