package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/legal-officer-api/config"
	"github.com/linesmerrill/legal-officer-api/services"
)

// tokenCacheTTL bounds how long a validated credential is trusted without
// being checked again.
const tokenCacheTTL = time.Minute

// TokenResponse is returned by the token endpoint.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresOn time.Time `json:"expiresOn"`
}

// Authenticator guards routes with go-guardian. Callers present a session
// token as bearer; the node owner may also use basic auth with the address as
// username when an owner password hash is configured.
type Authenticator struct {
	Tokens            *services.AuthenticationService
	OwnerPasswordHash []byte

	guardian auth.Authenticator
}

// NewAuthenticator sets up the go-guardian strategies.
func NewAuthenticator(tokens *services.AuthenticationService, ownerPasswordHash string) *Authenticator {
	a := &Authenticator{
		Tokens:            tokens,
		OwnerPasswordHash: []byte(ownerPasswordHash),
		guardian:          auth.New(),
	}
	cache := store.NewFIFO(context.Background(), tokenCacheTTL)
	a.guardian.EnableStrategy(bearer.CachedStrategyKey, bearer.New(a.ValidateToken, cache))
	if len(a.OwnerPasswordHash) > 0 {
		a.guardian.EnableStrategy(basic.StrategyKey, basic.New(a.ValidateOwner, cache))
	}
	return a
}

// Middleware rejects unauthenticated requests and stores the caller's address
// in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := a.guardian.Authenticate(r)
		if err != nil {
			zap.S().Debugw("unauthorized", "url", r.URL.String(), "error", err)
			config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAuthenticatedAddress(r.Context(), user.UserName())))
	})
}

// ValidateToken checks a bearer session token.
func (a *Authenticator) ValidateToken(_ context.Context, _ *http.Request, token string) (auth.Info, error) {
	address, err := a.Tokens.Authenticate(token)
	if err != nil {
		return nil, err
	}
	return auth.NewDefaultUser(address, address, nil, nil), nil
}

// ValidateOwner checks the node owner's basic auth credentials.
func (a *Authenticator) ValidateOwner(_ context.Context, _ *http.Request, address, password string) (auth.Info, error) {
	if !a.Tokens.IsNodeOwner(address) {
		return nil, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(a.OwnerPasswordHash, []byte(password)); err != nil {
		return nil, errors.New("invalid credentials")
	}
	return auth.NewDefaultUser(address, address, nil, nil), nil
}

// CreateToken issues a session token to the authenticated caller
func (a *Authenticator) CreateToken(w http.ResponseWriter, r *http.Request) {
	address := AuthenticatedAddress(r.Context())
	token, expiresOn, err := a.Tokens.IssueToken(address)
	if err != nil {
		config.ErrorStatus("failed to issue token", http.StatusInternalServerError, w, err)
		return
	}
	b, err := json.Marshal(TokenResponse{Token: token, ExpiresOn: expiresOn})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
