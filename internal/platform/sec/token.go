// Copyright (c) 2026 Coverdesk. All rights reserved.

// Package sec provides cryptographic primitives and session token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, Token Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the auth package's TokenProvider interface.
package sec

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/coverdesk/coverdesk/internal/platform/constants"
)

// # Verification Failures

// Typed verification errors. The session guard collapses all of them into a
// single 401 for the client; the distinction exists for logging and tests.
var (
	// ErrTokenExpired is returned when current time >= the token's expiry.
	// Expiry is the only server-side termination mechanism — there is no
	// revocation list, so an expired token simply forces a fresh login.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalidSignature is returned when the signature does not match
	// the claim payload. The signature covers the entire payload, so tampering
	// with any claim lands here.
	ErrTokenInvalidSignature = errors.New("sec: token signature invalid")

	// ErrTokenMalformed is returned when the token cannot be parsed at all.
	ErrTokenMalformed = errors.New("sec: token malformed")
)

// AuthClaims represents the payload embedded inside a session token.
//
// # Why custom claims?
//
// By embedding the UserID and Role directly inside the token, the session
// guard can reconstruct the active user context WITHOUT querying the
// credential store on every single API request. The trade-off is staleness:
// the role is a snapshot taken at issuance, so a role change only takes
// effect once the holder's token expires and is reissued. This is a
// deliberate scalability/simplicity decision, not a bug.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the token payload small.
	UserID string `json:"uid"`
	Role   string `json:"rol"`
}

// TokenService handles generation and verification of session tokens using
// HS256 with a process-wide secret.
//
// The secret is read-only after process start. Rotating it invalidates every
// outstanding token — there is no migration path, which is accepted.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService from the configured signing secret.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if len(secret) < constants.MinSessionSecretLength {
		return nil, fmt.Errorf("sec: session secret must be at least %d bytes", constants.MinSessionSecretLength)
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// IssueToken creates a new signed session token for a user.
//
// The role claim is snapshotted from the credential store at issuance time
// and is never re-read during verification. Every call produces a distinct
// token with a fresh issuance timestamp.
func (service *TokenService) IssueToken(userID string, role Role, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID: userID,
		Role:   string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of a session token string.
//
// Verification is pure computation — no I/O, no store lookup. A token is
// valid only if its signature verifies AND current time < expiry; a token
// presented at exactly its expiry instant is rejected as [ErrTokenExpired].
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, classifyTokenError(err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// classifyTokenError maps jwt parser failures onto the package's typed errors.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrTokenInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	default:
		// Unknown parser failures are treated as unparseable input.
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
}

// # Opaque Tokens

// GenerateSecureToken produces a cryptographically random, URL-safe opaque
// token of the given byte length. Used for volatile credentials (password
// reset) that live in Redis rather than inside a signed session token.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}
