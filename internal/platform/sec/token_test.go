// Copyright (c) 2026 Coverdesk. All rights reserved.

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverdesk/coverdesk/internal/platform/sec"
)

const testSecret = "0123456789abcdef0123456789abcdef" // 32 bytes

func newTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(testSecret, "coverdesk.app")
	require.NoError(t, err)
	return service
}

/*
TestNewTokenService_RejectsShortSecret ensures weak signing keys are
refused at construction time rather than at first use.
*/
func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	_, err := sec.NewTokenService("too-short", "coverdesk.app")
	require.Error(t, err)
}

/*
TestTokenService_Roundtrip issues a token and verifies the claims that
come back out of it.
*/
func TestTokenService_Roundtrip(t *testing.T) {
	service := newTokenService(t)

	token, err := service.IssueToken("user-123", sec.RoleAgent, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "agent", claims.Role)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "coverdesk.app", claims.Issuer)

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 59*time.Minute)
	assert.LessOrEqual(t, remaining, time.Hour)
}

/*
TestTokenService_DistinctTokens checks that repeated issuance for the
same user never produces an identical token.
*/
func TestTokenService_DistinctTokens(t *testing.T) {
	service := newTokenService(t)

	first, err := service.IssueToken("user-123", sec.RoleCustomer, time.Hour)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond) // iat has second granularity

	second, err := service.IssueToken("user-123", sec.RoleCustomer, time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

/*
TestTokenService_TamperedToken verifies that any modification to the
payload invalidates the signature.
*/
func TestTokenService_TamperedToken(t *testing.T) {
	service := newTokenService(t)

	token, err := service.IssueToken("user-123", sec.RoleCustomer, time.Hour)
	require.NoError(t, err)

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = service.VerifyToken(tampered)
	require.Error(t, err)
	assert.ErrorIs(t, err, sec.ErrTokenInvalidSignature)
}

/*
TestTokenService_WrongKey verifies tokens signed under a different
secret are rejected.
*/
func TestTokenService_WrongKey(t *testing.T) {
	service := newTokenService(t)
	other, err := sec.NewTokenService("ffffffffffffffffffffffffffffffff", "coverdesk.app")
	require.NoError(t, err)

	token, err := other.IssueToken("user-123", sec.RoleCustomer, time.Hour)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, sec.ErrTokenInvalidSignature)
}

/*
TestTokenService_ExpiredToken verifies an elapsed lifetime invalidates
the token. A token is live strictly before its expiry instant, never at
or after it.
*/
func TestTokenService_ExpiredToken(t *testing.T) {
	service := newTokenService(t)

	token, err := service.IssueToken("user-123", sec.RoleCustomer, -time.Second)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
}

/*
TestTokenService_ExpiryBoundary pins the boundary itself: a token is live
strictly before its expiry instant. With a zero lifetime the expiry equals
the issuance instant, so verification is already past it; a short positive
lifetime keeps the claims intact.
*/
func TestTokenService_ExpiryBoundary(t *testing.T) {
	service := newTokenService(t)

	t.Run("rejected_at_expiry_instant", func(t *testing.T) {
		token, err := service.IssueToken("user-123", sec.RoleCustomer, 0)
		require.NoError(t, err)

		_, err = service.VerifyToken(token)
		require.Error(t, err)
		assert.ErrorIs(t, err, sec.ErrTokenExpired)
	})

	t.Run("accepted_before_expiry", func(t *testing.T) {
		token, err := service.IssueToken("user-123", sec.RoleCustomer, 2*time.Second)
		require.NoError(t, err)

		claims, err := service.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
		assert.Equal(t, "customer", claims.Role)
	})
}

/*
TestTokenService_MalformedToken covers garbage input.
*/
func TestTokenService_MalformedToken(t *testing.T) {
	service := newTokenService(t)

	for _, input := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := service.VerifyToken(input)
		require.Error(t, err, "input %q", input)
		assert.ErrorIs(t, err, sec.ErrTokenMalformed, "input %q", input)
	}
}

/*
TestGenerateSecureToken checks length and uniqueness of opaque tokens.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	assert.Len(t, first, 43) // base64url, no padding

	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
