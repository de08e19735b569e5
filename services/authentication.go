package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/linesmerrill/legal-officer-api/chain"
)

// DefaultTokenTTL is the lifetime of issued session tokens.
const DefaultTokenTTL = time.Hour

// ErrUnauthenticated is returned for missing, invalid or expired tokens.
var ErrUnauthenticated = errors.New("unauthenticated")

// AuthenticationService issues and checks HS256 session tokens whose subject
// is the caller's account address.
type AuthenticationService struct {
	secret []byte
	owner  string
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthenticationService creates a service signing with secret. owner is
// the address of the legal officer running the node.
func NewAuthenticationService(secret, owner string, ttl time.Duration) *AuthenticationService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthenticationService{
		secret: []byte(secret),
		owner:  owner,
		ttl:    ttl,
		now:    time.Now,
	}
}

// NodeOwner returns the address of the node's legal officer.
func (a *AuthenticationService) NodeOwner() string {
	return a.owner
}

// IsNodeOwner reports whether address is the node's legal officer.
func (a *AuthenticationService) IsNodeOwner(address string) bool {
	return a.owner != "" && address == a.owner
}

// IssueToken signs a token for address and returns it with its expiry.
func (a *AuthenticationService) IssueToken(address string) (string, time.Time, error) {
	if len(a.secret) == 0 {
		return "", time.Time{}, errors.New("token secret is not configured")
	}
	now := a.now()
	expiresAt := now.Add(a.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   address,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Authenticate checks a token and returns the address it was issued to.
func (a *AuthenticationService) Authenticate(token string) (string, error) {
	if len(a.secret) == 0 {
		return "", fmt.Errorf("%w: token secret is not configured", ErrUnauthenticated)
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	address, err := parsed.Claims.GetSubject()
	if err != nil || !chain.ValidAddress(address) {
		return "", fmt.Errorf("%w: invalid subject", ErrUnauthenticated)
	}
	return address, nil
}
