package testhelpers

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/legal-officer-api/api"
)

// Well-known development accounts used as callers in handler tests
const (
	Owner     = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	Requester = "5CXLTF2PFBE89tTYsrofGPkSfGTdmW4ciw4vAfgcKhjggRgZ"
)

// Request builds a request as it reaches a handler once the authentication
// middleware and the router have run: caller is set in the context and vars
// are the url route variables. An empty caller makes an anonymous request.
func Request(t *testing.T, method, url, body, caller string, vars map[string]string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	if caller != "" {
		req = req.WithContext(api.WithAuthenticatedAddress(req.Context(), caller))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}
