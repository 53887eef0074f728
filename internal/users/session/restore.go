// Copyright (c) 2026 Coverdesk. All rights reserved.

package session

import (
	"context"
	"net/http"
	"time"

	"github.com/coverdesk/coverdesk/internal/platform/apperr"
	"github.com/coverdesk/coverdesk/internal/platform/sec"
	"github.com/coverdesk/coverdesk/internal/users/auth"
)

// # Restore Constraints

const (
	// MaxRestoreRetries bounds how many times a transient identity-fetch
	// failure is retried after the initial attempt.
	MaxRestoreRetries = 2

	// DefaultRestoreDelay is the fixed pause between restore attempts.
	DefaultRestoreDelay = 250 * time.Millisecond
)

// TokenVerifier validates a stored session token.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Restorer re-establishes session state from a previously stored token.
type Restorer struct {
	cache    *Cache
	verifier TokenVerifier
	users    auth.UserRepository
	delay    time.Duration
}

// NewRestorer constructs a [Restorer]. A non-positive delay falls back to
// [DefaultRestoreDelay].
func NewRestorer(cache *Cache, verifier TokenVerifier, users auth.UserRepository, delay time.Duration) *Restorer {
	if delay <= 0 {
		delay = DefaultRestoreDelay
	}
	return &Restorer{
		cache:    cache,
		verifier: verifier,
		users:    users,
		delay:    delay,
	}
}

/*
Restore validates a stored token and rehydrates the session cache.

Description: The token is verified locally first; an expired or tampered
token clears the cache immediately with no retries. The identity fetch that
follows is retried up to [MaxRestoreRetries] times with a fixed delay, but
only for transient failures. Any 4xx-class outcome (credential dead, account
gone) short-circuits: retrying cannot revive it.

Parameters:
  - context: context.Context (cancellation aborts the retry loop)
  - token: string (previously stored session token)

Returns:
  - *auth.User: Restored identity
  - error: apperr.Unauthenticated, context cancellation, or exhausted retries
*/
func (restorer *Restorer) Restore(context context.Context, token string) (*auth.User, error) {

	// Local verification needs no I/O and never deserves a retry
	claims, err := restorer.verifier.VerifyToken(token)
	if err != nil {
		restorer.cache.Clear()
		return nil, apperr.Unauthenticated("Stored session token is invalid or expired")
	}

	var lastErr error
	for attempt := 0; attempt <= MaxRestoreRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-context.Done():
				return nil, context.Err()
			case <-time.After(restorer.delay):
			}
		}

		user, err := restorer.users.FindByID(context, claims.UserID)
		if err == nil {
			if !user.IsActive {
				restorer.cache.Clear()
				return nil, apperr.Unauthenticated("Account is deactivated")
			}
			restorer.cache.SetAuthenticated(user)
			return user, nil
		}

		// Dead-credential outcomes short-circuit the loop
		if isNonRetryable(err) {
			restorer.cache.Clear()
			return nil, apperr.Unauthenticated("Stored session no longer maps to an account")
		}

		lastErr = err
	}

	// Transient failures exhausted every retry; keep prior state untouched
	// so a flapping database does not log anyone out.
	return nil, lastErr
}

// isNonRetryable reports whether err is a definitive 4xx-class rejection.
// Everything else (connectivity, timeouts, 5xx) is considered transient.
func isNonRetryable(err error) bool {
	ae := apperr.As(err)
	return ae != nil && ae.HTTPStatus >= http.StatusBadRequest && ae.HTTPStatus < http.StatusInternalServerError
}
