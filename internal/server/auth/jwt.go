// Package auth issues and verifies HS256 access tokens that bind an account
// identity for a fixed lifetime.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/memberkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is the validity window of every issued token.
const TokenLifetime = 3 * 24 * time.Hour

// Claims carries the registered time claims and the account identity.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"_id"`
}

// FailureKind names why a token was rejected. It is meant for logs only;
// callers outside this package see common.ErrNotAuthorized.
type FailureKind string

const (
	FailureMalformed FailureKind = "malformed"
	FailureSignature FailureKind = "signature"
	FailureExpired   FailureKind = "expired"
	FailureClaims    FailureKind = "claims"
)

// VerificationError is returned by TokenVerifier.Verify. It matches
// common.ErrNotAuthorized under errors.Is.
type VerificationError struct {
	Kind FailureKind
	Err  error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("token rejected (%s): %v", e.Kind, e.Err)
}

func (e *VerificationError) Unwrap() []error {
	return []error{common.ErrNotAuthorized, e.Err}
}

// TokenIssuer signs tokens for account identities.
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenIssuer returns an issuer signing with secret. An empty secret is
// rejected with common.ErrMissingSigningSecret.
func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, common.ErrMissingSigningSecret
	}
	return &TokenIssuer{secret: []byte(secret), lifetime: TokenLifetime, now: time.Now}, nil
}

// Issue returns a signed token asserting accountID, valid for TokenLifetime.
func (i *TokenIssuer) Issue(accountID string) (string, error) {
	if len(i.secret) == 0 {
		return "", common.ErrMissingSigningSecret
	}
	if accountID == "" {
		return "", errors.New("cannot issue token for empty identity")
	}

	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
		},
		AccountID: accountID,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// TokenVerifier validates tokens produced by a TokenIssuer sharing the secret.
type TokenVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewTokenVerifier returns a verifier for secret. An empty secret is rejected
// with common.ErrMissingSigningSecret.
func NewTokenVerifier(secret string) (*TokenVerifier, error) {
	if secret == "" {
		return nil, common.ErrMissingSigningSecret
	}
	return &TokenVerifier{secret: []byte(secret), now: time.Now}, nil
}

// Verify checks structure, signature and expiry, in that order, and returns
// the embedded account identity. Every failure is a *VerificationError.
func (v *TokenVerifier) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return "", &VerificationError{Kind: classify(err), Err: err}
	}

	if claims.AccountID == "" {
		return "", &VerificationError{Kind: FailureClaims, Err: errors.New("token carries no identity")}
	}

	return claims.AccountID, nil
}

func classify(err error) FailureKind {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return FailureMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return FailureSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return FailureExpired
	default:
		return FailureClaims
	}
}

// BearerValue extracts the credential from an authorization header value.
// Any scheme prefix ("Bearer", "Token", ...) is ignored; the credential is the
// second whitespace-separated field. It returns "" when there is none.
func BearerValue(header string) string {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
