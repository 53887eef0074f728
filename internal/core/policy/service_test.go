package policy_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverdesk/coverdesk/internal/audit"
	"github.com/coverdesk/coverdesk/internal/core/policy"
	"github.com/coverdesk/coverdesk/internal/core/product"
	"github.com/coverdesk/coverdesk/internal/platform/apperr"
	"github.com/coverdesk/coverdesk/internal/platform/dberr"
	"github.com/coverdesk/coverdesk/internal/platform/sec"
	"github.com/coverdesk/coverdesk/pkg/pagination"
)

type fakePolicyRepository struct {
	byID map[string]*policy.Policy

	// beforeStatusUpdate interleaves a competing writer between the
	// service's read and its status write.
	beforeStatusUpdate func()
}

func (r *fakePolicyRepository) Create(_ context.Context, p *policy.Policy) error {
	r.byID[p.ID] = p
	return nil
}

func (r *fakePolicyRepository) FindByID(_ context.Context, id string) (*policy.Policy, error) {
	if p, ok := r.byID[id]; ok {
		return p, nil
	}
	return nil, apperr.NotFound("Policy")
}

func (r *fakePolicyRepository) ListByUser(_ context.Context, userID string, _ pagination.Params) ([]policy.Policy, int, error) {
	var out []policy.Policy
	for _, p := range r.byID {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (r *fakePolicyRepository) ListAll(_ context.Context, _ pagination.Params) ([]policy.Policy, int, error) {
	var out []policy.Policy
	for _, p := range r.byID {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *fakePolicyRepository) UpdateStatus(_ context.Context, id, status string) error {
	if r.beforeStatusUpdate != nil {
		r.beforeStatusUpdate()
	}
	// Same guard as the real store: transitions only leave the active state.
	p, ok := r.byID[id]
	if !ok || p.Status != policy.StatusActive {
		return dberr.ErrNotFound
	}
	p.Status = status
	return nil
}

type fakeCatalogue struct {
	products map[string]*product.Product
}

func (c *fakeCatalogue) GetProduct(_ context.Context, id string) (*product.Product, error) {
	if p, ok := c.products[id]; ok {
		return p, nil
	}
	return nil, apperr.NotFound("Product")
}

type capturingRecorder struct {
	entries []audit.Entry
}

func (rec *capturingRecorder) Record(_ context.Context, entry audit.Entry) {
	rec.entries = append(rec.entries, entry)
}

func newTestService() (*policy.Service, *fakePolicyRepository, *fakeCatalogue, *capturingRecorder) {
	repo := &fakePolicyRepository{byID: map[string]*policy.Policy{}}
	catalogue := &fakeCatalogue{products: map[string]*product.Product{
		"prod-1": {
			ID:             "prod-1",
			Name:           "Family Health Plus",
			PremiumCents:   12900,
			CoverageCents:  50_000_00,
			DurationMonths: 12,
			IsActive:       true,
		},
		"prod-retired": {
			ID:             "prod-retired",
			Name:           "Legacy Auto",
			PremiumCents:   9900,
			DurationMonths: 6,
			IsActive:       false,
		},
	}}
	recorder := &capturingRecorder{}
	service := policy.NewService(repo, catalogue, recorder, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return service, repo, catalogue, recorder
}

func customer(id string) policy.Caller {
	return policy.Caller{UserID: id, Role: sec.RoleCustomer, IPAddress: "198.51.100.3"}
}

func TestService_Purchase(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots_premium_and_schedules_coverage", func(t *testing.T) {
		service, repo, catalogue, recorder := newTestService()

		bought, err := service.Purchase(ctx, customer("user-1"), "prod-1")
		require.NoError(t, err)

		assert.Equal(t, "user-1", bought.UserID)
		assert.Equal(t, policy.StatusActive, bought.Status)
		assert.Equal(t, int64(12900), bought.PremiumCents)
		assert.True(t, strings.HasPrefix(bought.PolicyNumber, "CVD-"))

		// End date follows the product duration from the start date
		expectedEnd := bought.StartDate.AddDate(0, 12, 0)
		assert.Equal(t, expectedEnd, bought.EndDate)
		assert.True(t, bought.IsActive(time.Now()))

		// Later catalogue repricing must not rewrite the contract
		catalogue.products["prod-1"].PremiumCents = 99999
		stored := repo.byID[bought.ID]
		assert.Equal(t, int64(12900), stored.PremiumCents)

		require.Len(t, recorder.entries, 1)
		assert.Equal(t, audit.ActionPolicyPurchased, recorder.entries[0].Action)
		assert.Equal(t, "user-1", recorder.entries[0].ActorID)
	})

	t.Run("retired_product_refused", func(t *testing.T) {
		service, repo, _, recorder := newTestService()

		_, err := service.Purchase(ctx, customer("user-1"), "prod-retired")
		require.Error(t, err)
		assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)
		assert.Empty(t, repo.byID)
		assert.Empty(t, recorder.entries)
	})

	t.Run("unknown_product_not_found", func(t *testing.T) {
		service, _, _, _ := newTestService()

		_, err := service.Purchase(ctx, customer("user-1"), "ghost")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

func TestService_Visibility(t *testing.T) {
	ctx := context.Background()

	t.Run("customers_see_only_their_own", func(t *testing.T) {
		service, _, _, _ := newTestService()

		mine, err := service.Purchase(ctx, customer("user-1"), "prod-1")
		require.NoError(t, err)
		_, err = service.Purchase(ctx, customer("user-2"), "prod-1")
		require.NoError(t, err)

		policies, total, err := service.ListPolicies(ctx, customer("user-1"), pagination.Params{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, policies, 1)
		assert.Equal(t, mine.ID, policies[0].ID)

		// A stranger's policy reads back as absent, not forbidden
		other, err := service.Purchase(ctx, customer("user-3"), "prod-1")
		require.NoError(t, err)
		_, err = service.GetPolicy(ctx, customer("user-1"), other.ID)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("staff_see_everything", func(t *testing.T) {
		service, _, _, _ := newTestService()

		_, err := service.Purchase(ctx, customer("user-1"), "prod-1")
		require.NoError(t, err)
		_, err = service.Purchase(ctx, customer("user-2"), "prod-1")
		require.NoError(t, err)

		agent := policy.Caller{UserID: "agent-1", Role: sec.RoleAgent}
		_, total, err := service.ListPolicies(ctx, agent, pagination.Params{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("owner_cancels_active_policy", func(t *testing.T) {
		service, repo, _, recorder := newTestService()

		bought, err := service.Purchase(ctx, customer("user-1"), "prod-1")
		require.NoError(t, err)

		cancelled, err := service.Cancel(ctx, customer("user-1"), bought.ID)
		require.NoError(t, err)
		assert.Equal(t, policy.StatusCancelled, cancelled.Status)
		assert.Equal(t, policy.StatusCancelled, repo.byID[bought.ID].Status)

		// purchase + cancel
		require.Len(t, recorder.entries, 2)
		assert.Equal(t, audit.ActionPolicyCancelled, recorder.entries[1].Action)
	})

	t.Run("cancel_is_not_idempotent", func(t *testing.T) {
		service, _, _, _ := newTestService()

		bought, err := service.Purchase(ctx, customer("user-1"), "prod-1")
		require.NoError(t, err)

		_, err = service.Cancel(ctx, customer("user-1"), bought.ID)
		require.NoError(t, err)

		_, err = service.Cancel(ctx, customer("user-1"), bought.ID)
		require.Error(t, err)
		assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)
	})

	t.Run("racing_cancels_settle_first_writer_wins", func(t *testing.T) {
		service, repo, _, recorder := newTestService()

		bought, err := service.Purchase(ctx, customer("user-1"), "prod-1")
		require.NoError(t, err)

		// A competing cancel commits after our pre-check but before our write.
		repo.beforeStatusUpdate = func() {
			repo.byID[bought.ID].Status = policy.StatusCancelled
		}

		_, err = service.Cancel(ctx, customer("user-1"), bought.ID)
		require.Error(t, err)
		assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)

		// Only the purchase was audited; the losing cancel records nothing.
		require.Len(t, recorder.entries, 1)
		assert.Equal(t, audit.ActionPolicyPurchased, recorder.entries[0].Action)
	})

	t.Run("admin_may_cancel_agents_may_not", func(t *testing.T) {
		service, _, _, _ := newTestService()

		bought, err := service.Purchase(ctx, customer("user-1"), "prod-1")
		require.NoError(t, err)

		agent := policy.Caller{UserID: "agent-1", Role: sec.RoleAgent}
		_, err = service.Cancel(ctx, agent, bought.ID)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

		admin := policy.Caller{UserID: "admin-1", Role: sec.RoleAdmin}
		cancelled, err := service.Cancel(ctx, admin, bought.ID)
		require.NoError(t, err)
		assert.Equal(t, policy.StatusCancelled, cancelled.Status)
	})
}
