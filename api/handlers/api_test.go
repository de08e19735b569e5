package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/legal-officer-api/api/testhelpers"
	"github.com/linesmerrill/legal-officer-api/config"
	"github.com/linesmerrill/legal-officer-api/metrics"
	"github.com/linesmerrill/legal-officer-api/services"
)

const testSecret = "test-secret"

func testApp() *App {
	registry := prometheus.NewRegistry()
	a := &App{
		Config:   config.Config{Owner: testhelpers.Owner, JWTSecret: testSecret},
		Registry: registry,
		Metrics:  metrics.New(registry),
	}
	a.Updates = NewLocUpdates(a.Metrics)
	a.Router = a.New()
	return a
}

func executeRequest(a *App, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	return rr
}

func TestUnknownRoute(t *testing.T) {
	req := httptest.NewRequest("GET", "/asdf", nil)
	response := executeRequest(testApp(), req)

	assert.Equal(t, http.StatusNotFound, response.Code)
}

func TestHealthCheckRoute(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	response := executeRequest(testApp(), req)

	assert.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), "alive")
}

func TestApp_LocRequestUnauthorized(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/loc-request/1234", nil)
	response := executeRequest(testApp(), req)

	assert.Equal(t, http.StatusUnauthorized, response.Code)
}

func TestApp_LocRequestInvalidToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/loc-request/1234", nil)
	req.Header.Add("Authorization", "Bearer asdfasdf")
	response := executeRequest(testApp(), req)

	assert.Equal(t, http.StatusUnauthorized, response.Code)
}

func TestApp_WrongMethod(t *testing.T) {
	req := httptest.NewRequest("DELETE", "/api/transaction", nil)
	response := executeRequest(testApp(), req)

	assert.Equal(t, http.StatusMethodNotAllowed, response.Code)
}

func TestApp_RefreshToken(t *testing.T) {
	tokens := services.NewAuthenticationService(testSecret, testhelpers.Owner, services.DefaultTokenTTL)
	token, _, err := tokens.IssueToken(testhelpers.Requester)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/auth/token", nil)
	req.Header.Add("Authorization", "Bearer "+token)
	response := executeRequest(testApp(), req)

	assert.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), `"token"`)
}

func TestApp_MetricsRoute(t *testing.T) {
	req := httptest.NewRequest("GET", "/metrics", nil)
	response := executeRequest(testApp(), req)

	assert.Equal(t, http.StatusOK, response.Code)
	assert.True(t, strings.Contains(response.Body.String(), "legal_officer_"))
}
