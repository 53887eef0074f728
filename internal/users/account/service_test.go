// Copyright (c) 2026 Coverdesk. All rights reserved.

package account_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverdesk/coverdesk/internal/audit"
	"github.com/coverdesk/coverdesk/internal/platform/apperr"
	"github.com/coverdesk/coverdesk/internal/platform/sec"
	"github.com/coverdesk/coverdesk/internal/users/account"
	"github.com/coverdesk/coverdesk/internal/users/auth"
	"github.com/coverdesk/coverdesk/pkg/pagination"
)

// fakeAccountRepository is an in-memory AccountRepository keyed by ID.
type fakeAccountRepository struct {
	byID map[string]*auth.User
}

func (r *fakeAccountRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("Account")
}

func (r *fakeAccountRepository) List(_ context.Context, params pagination.Params) ([]auth.User, int, error) {
	users := make([]auth.User, 0, len(r.byID))
	for _, u := range r.byID {
		users = append(users, *u)
	}
	return users, len(users), nil
}

func (r *fakeAccountRepository) UpdateRole(_ context.Context, userID string, role sec.Role) error {
	u, ok := r.byID[userID]
	if !ok {
		return apperr.NotFound("Account")
	}
	u.Role = role
	return nil
}

func (r *fakeAccountRepository) SoftDelete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return apperr.NotFound("Account")
	}
	delete(r.byID, id)
	return nil
}

// capturingRecorder records audit entries synchronously for assertions.
type capturingRecorder struct {
	entries []audit.Entry
}

func (rec *capturingRecorder) Record(_ context.Context, entry audit.Entry) {
	rec.entries = append(rec.entries, entry)
}

func newTestService(users ...*auth.User) (*account.Service, *fakeAccountRepository, *capturingRecorder) {
	repo := &fakeAccountRepository{byID: map[string]*auth.User{}}
	for _, u := range users {
		repo.byID[u.ID] = u
	}
	recorder := &capturingRecorder{}
	service := account.NewService(repo, recorder, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return service, repo, recorder
}

/*
TestService_ChangeRole verifies role validation, persistence, and that the
mutation lands in the audit trail attributed to the acting administrator.
*/
func TestService_ChangeRole(t *testing.T) {
	ctx := context.Background()
	admin := account.MutationContext{ActorID: "admin-1", IPAddress: "203.0.113.7"}

	t.Run("promotes_customer_to_agent", func(t *testing.T) {
		service, repo, recorder := newTestService(
			&auth.User{ID: "user-1", Role: sec.RoleCustomer, IsActive: true},
		)

		err := service.ChangeRole(ctx, admin, "user-1", sec.RoleAgent)
		require.NoError(t, err)
		assert.Equal(t, sec.RoleAgent, repo.byID["user-1"].Role)

		// Audit entry is attributed to the token subject, not the target
		require.Len(t, recorder.entries, 1)
		entry := recorder.entries[0]
		assert.Equal(t, audit.ActionUserRoleChanged, entry.Action)
		assert.Equal(t, "admin-1", entry.ActorID)
		assert.Equal(t, "203.0.113.7", entry.IPAddress)
		assert.Equal(t, "user-1", entry.Details["target_id"])
		assert.Equal(t, "customer", entry.Details["old_role"])
		assert.Equal(t, "agent", entry.Details["new_role"])
	})

	t.Run("rejects_unknown_role", func(t *testing.T) {
		service, repo, recorder := newTestService(
			&auth.User{ID: "user-1", Role: sec.RoleCustomer, IsActive: true},
		)

		err := service.ChangeRole(ctx, admin, "user-1", "root")
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

		assert.Equal(t, sec.RoleCustomer, repo.byID["user-1"].Role)
		assert.Empty(t, recorder.entries, "failed mutations are not audited")
	})

	t.Run("unknown_target_not_found", func(t *testing.T) {
		service, _, recorder := newTestService()

		err := service.ChangeRole(ctx, admin, "ghost", sec.RoleAgent)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
		assert.Empty(t, recorder.entries)
	})
}

/*
TestService_Deactivate verifies soft deletion, the self-deactivation guard,
and audit attribution.
*/
func TestService_Deactivate(t *testing.T) {
	ctx := context.Background()
	admin := account.MutationContext{ActorID: "admin-1", IPAddress: "203.0.113.7"}

	t.Run("deactivates_target", func(t *testing.T) {
		service, repo, recorder := newTestService(
			&auth.User{ID: "user-1", Role: sec.RoleCustomer, IsActive: true},
		)

		err := service.Deactivate(ctx, admin, "user-1")
		require.NoError(t, err)
		assert.NotContains(t, repo.byID, "user-1")

		require.Len(t, recorder.entries, 1)
		assert.Equal(t, audit.ActionUserDeactivated, recorder.entries[0].Action)
		assert.Equal(t, "admin-1", recorder.entries[0].ActorID)
	})

	t.Run("self_deactivation_refused", func(t *testing.T) {
		service, repo, recorder := newTestService(
			&auth.User{ID: "admin-1", Role: sec.RoleAdmin, IsActive: true},
		)

		err := service.Deactivate(ctx, admin, "admin-1")
		require.Error(t, err)
		assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)

		assert.Contains(t, repo.byID, "admin-1")
		assert.Empty(t, recorder.entries)
	})
}
