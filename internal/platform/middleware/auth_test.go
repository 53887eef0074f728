// Copyright (c) 2026 Coverdesk. All rights reserved.

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverdesk/coverdesk/internal/platform/ctxutil"
	"github.com/coverdesk/coverdesk/internal/platform/middleware"
	"github.com/coverdesk/coverdesk/internal/platform/sec"
)

type stubVerifier struct {
	claims *sec.AuthClaims
	err    error
}

func (s *stubVerifier) VerifyToken(_ string) (*sec.AuthClaims, error) {
	return s.claims, s.err
}

// claimsProbe records the claims visible to the downstream handler.
func claimsProbe(captured **sec.AuthClaims) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*captured = ctxutil.GetAuthUser(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_NoHeaderIsAnonymous(t *testing.T) {
	var seen *sec.AuthClaims
	handler := middleware.Authenticate(&stubVerifier{})(claimsProbe(&seen))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, seen)
}

func TestAuthenticate_BadFormatRejected(t *testing.T) {
	var seen *sec.AuthClaims
	handler := middleware.Authenticate(&stubVerifier{})(claimsProbe(&seen))

	for _, header := range []string{"Bearer", "Basic abc123", "Bearer a b"} {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", header)
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code, "header %q", header)
		assert.Nil(t, seen)
	}
}

func TestAuthenticate_InvalidTokenRejected(t *testing.T) {
	var seen *sec.AuthClaims
	verifier := &stubVerifier{err: sec.ErrTokenExpired}
	handler := middleware.Authenticate(verifier)(claimsProbe(&seen))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer expired-token")
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Nil(t, seen)
}

func TestAuthenticate_ValidTokenInjectsClaims(t *testing.T) {
	var seen *sec.AuthClaims
	verifier := &stubVerifier{claims: &sec.AuthClaims{UserID: "user-1", Role: "agent"}}
	handler := middleware.Authenticate(verifier)(claimsProbe(&seen))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer good-token")
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.UserID)
	assert.Equal(t, "agent", seen.Role)
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	handler := middleware.RequireAuth(next)

	t.Run("anonymous_rejected", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("authenticated_passes", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "user-1", Role: "customer"})
		handler.ServeHTTP(recorder, request.WithContext(ctx))
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	handler := middleware.RequireRoles(sec.RoleAdmin)(next)

	serve := func(claims *sec.AuthClaims) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		if claims != nil {
			request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
		}
		handler.ServeHTTP(recorder, request)
		return recorder
	}

	t.Run("anonymous_gets_401", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(nil).Code)
	})

	t.Run("wrong_role_gets_403", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, serve(&sec.AuthClaims{UserID: "u", Role: "customer"}).Code)
	})

	t.Run("unknown_role_gets_403", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, serve(&sec.AuthClaims{UserID: "u", Role: "superuser"}).Code)
	})

	t.Run("allowed_role_passes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(&sec.AuthClaims{UserID: "u", Role: "admin"}).Code)
	})
}
