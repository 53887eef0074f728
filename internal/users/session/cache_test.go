// Copyright (c) 2026 Coverdesk. All rights reserved.

package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverdesk/coverdesk/internal/platform/apperr"
	"github.com/coverdesk/coverdesk/internal/platform/sec"
	"github.com/coverdesk/coverdesk/internal/users/auth"
	"github.com/coverdesk/coverdesk/internal/users/session"
)

/*
TestCache_StateTransitions verifies the authenticated/cleared lifecycle and
that snapshots reach subscribers.
*/
func TestCache_StateTransitions(t *testing.T) {
	cache := session.NewCache()

	initial := cache.Current()
	assert.False(t, initial.IsAuthenticated)
	assert.Nil(t, initial.Identity)

	updates, cancel := cache.Subscribe()
	defer cancel()

	user := &auth.User{ID: "user-1", Name: "Alice", Role: sec.RoleCustomer}
	cache.SetAuthenticated(user)

	select {
	case state := <-updates:
		assert.True(t, state.IsAuthenticated)
		require.NotNil(t, state.Identity)
		assert.Equal(t, "user-1", state.Identity.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a state notification after SetAuthenticated")
	}

	cache.Clear()

	select {
	case state := <-updates:
		assert.False(t, state.IsAuthenticated)
		assert.Nil(t, state.Identity)
	case <-time.After(time.Second):
		t.Fatal("expected a state notification after Clear")
	}
}

/*
TestCache_SlowSubscriberKeepsLatest checks that a subscriber who never drains
its channel still observes the most recent snapshot, not a stale one.
*/
func TestCache_SlowSubscriberKeepsLatest(t *testing.T) {
	cache := session.NewCache()

	updates, cancel := cache.Subscribe()
	defer cancel()

	cache.SetAuthenticated(&auth.User{ID: "first"})
	cache.SetAuthenticated(&auth.User{ID: "second"})
	cache.Clear()

	// Only the freshest snapshot survives in the buffer
	state := <-updates
	assert.False(t, state.IsAuthenticated)

	select {
	case _, ok := <-updates:
		assert.False(t, ok, "no further notifications expected")
	default:
	}
}

/*
TestCache_CancelUnsubscribes verifies cancel closes the channel and that a
double cancel is harmless.
*/
func TestCache_CancelUnsubscribes(t *testing.T) {
	cache := session.NewCache()

	updates, cancel := cache.Subscribe()
	cancel()
	cancel() // idempotent

	_, ok := <-updates
	assert.False(t, ok)

	// Broadcasting after cancellation must not panic
	cache.SetAuthenticated(&auth.User{ID: "late"})
}

// # Restoration

// stubVerifier returns canned claims or an error.
type stubVerifier struct {
	claims *sec.AuthClaims
	err    error
}

func (v *stubVerifier) VerifyToken(string) (*sec.AuthClaims, error) {
	return v.claims, v.err
}

// flakyUserRepository fails a configurable number of FindByID calls before
// succeeding. Only FindByID is exercised by restoration.
type flakyUserRepository struct {
	failures int
	failWith error
	user     *auth.User
	calls    int
}

func (r *flakyUserRepository) FindByID(_ context.Context, _ string) (*auth.User, error) {
	r.calls++
	if r.calls <= r.failures {
		return nil, r.failWith
	}
	if r.user == nil {
		return nil, apperr.NotFound("User")
	}
	return r.user, nil
}

func (r *flakyUserRepository) FindByEmail(context.Context, string) (*auth.User, error) {
	return nil, apperr.NotFound("User")
}
func (r *flakyUserRepository) Create(context.Context, *auth.User) error {
	return nil
}

func (r *flakyUserRepository) UpdatePassword(context.Context, string, string) error {
	return nil
}

func (r *flakyUserRepository) SoftDelete(context.Context, string) error {
	return nil
}

func validClaims() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "user-1", Role: string(sec.RoleCustomer)}
}

/*
TestRestorer_Restore covers the bounded-retry restoration contract: transient
errors retry with a fixed delay, dead credentials short-circuit, and success
rehydrates the cache.
*/
func TestRestorer_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("success_populates_cache", func(t *testing.T) {
		cache := session.NewCache()
		repo := &flakyUserRepository{user: &auth.User{ID: "user-1", IsActive: true}}
		restorer := session.NewRestorer(cache, &stubVerifier{claims: validClaims()}, repo, time.Millisecond)

		user, err := restorer.Restore(ctx, "stored-token")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)

		state := cache.Current()
		assert.True(t, state.IsAuthenticated)
		assert.Equal(t, "user-1", state.Identity.ID)
		assert.Equal(t, 1, repo.calls)
	})

	t.Run("transient_failure_retries_then_succeeds", func(t *testing.T) {
		cache := session.NewCache()
		repo := &flakyUserRepository{
			failures: 2,
			failWith: errors.New("connection refused"),
			user:     &auth.User{ID: "user-1", IsActive: true},
		}
		restorer := session.NewRestorer(cache, &stubVerifier{claims: validClaims()}, repo, time.Millisecond)

		user, err := restorer.Restore(ctx, "stored-token")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)

		// 1 initial attempt + 2 retries
		assert.Equal(t, 3, repo.calls)
	})

	t.Run("retry_budget_is_bounded", func(t *testing.T) {
		cache := session.NewCache()
		transient := errors.New("connection refused")
		repo := &flakyUserRepository{failures: 10, failWith: transient}
		restorer := session.NewRestorer(cache, &stubVerifier{claims: validClaims()}, repo, time.Millisecond)

		_, err := restorer.Restore(ctx, "stored-token")
		require.Error(t, err)
		assert.ErrorIs(t, err, transient)
		assert.Equal(t, 1+session.MaxRestoreRetries, repo.calls)
	})

	t.Run("invalid_token_clears_without_retry", func(t *testing.T) {
		cache := session.NewCache()
		cache.SetAuthenticated(&auth.User{ID: "stale"})

		repo := &flakyUserRepository{}
		restorer := session.NewRestorer(cache, &stubVerifier{err: sec.ErrTokenExpired}, repo, time.Millisecond)

		_, err := restorer.Restore(ctx, "expired-token")
		require.Error(t, err)
		assert.True(t, apperr.IsUnauthenticated(err))

		assert.False(t, cache.Current().IsAuthenticated)
		assert.Zero(t, repo.calls, "no identity fetch for a locally rejected token")
	})

	t.Run("dead_account_short_circuits", func(t *testing.T) {
		cache := session.NewCache()
		cache.SetAuthenticated(&auth.User{ID: "stale"})

		repo := &flakyUserRepository{failures: 10, failWith: apperr.NotFound("User")}
		restorer := session.NewRestorer(cache, &stubVerifier{claims: validClaims()}, repo, time.Millisecond)

		_, err := restorer.Restore(ctx, "stored-token")
		require.Error(t, err)
		assert.True(t, apperr.IsUnauthenticated(err))

		assert.False(t, cache.Current().IsAuthenticated)
		assert.Equal(t, 1, repo.calls, "definitive rejection must not be retried")
	})

	t.Run("context_cancellation_aborts_retry_wait", func(t *testing.T) {
		cache := session.NewCache()
		repo := &flakyUserRepository{failures: 10, failWith: errors.New("connection refused")}
		restorer := session.NewRestorer(cache, &stubVerifier{claims: validClaims()}, repo, time.Hour)

		cancelCtx, cancel := context.WithCancel(ctx)
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, err := restorer.Restore(cancelCtx, "stored-token")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, repo.calls)
	})
}
