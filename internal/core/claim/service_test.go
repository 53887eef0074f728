package claim_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverdesk/coverdesk/internal/audit"
	"github.com/coverdesk/coverdesk/internal/core/claim"
	"github.com/coverdesk/coverdesk/internal/core/policy"
	"github.com/coverdesk/coverdesk/internal/platform/apperr"
	"github.com/coverdesk/coverdesk/internal/platform/sec"
	"github.com/coverdesk/coverdesk/pkg/pagination"
)

type fakeClaimRepository struct {
	byID map[string]*claim.Claim
}

func (r *fakeClaimRepository) Create(_ context.Context, c *claim.Claim) error {
	r.byID[c.ID] = c
	return nil
}

func (r *fakeClaimRepository) FindByID(_ context.Context, id string) (*claim.Claim, error) {
	if c, ok := r.byID[id]; ok {
		return c, nil
	}
	return nil, apperr.NotFound("Claim")
}

func (r *fakeClaimRepository) ListByUser(_ context.Context, userID string, _ pagination.Params) ([]claim.Claim, int, error) {
	var out []claim.Claim
	for _, c := range r.byID {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (r *fakeClaimRepository) ListAll(_ context.Context, _ pagination.Params) ([]claim.Claim, int, error) {
	var out []claim.Claim
	for _, c := range r.byID {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (r *fakeClaimRepository) Decide(_ context.Context, id, status, decidedBy, note string) error {
	c, ok := r.byID[id]
	if !ok || c.Status != claim.StatusPending {
		return apperr.NotFound("Claim")
	}
	now := time.Now()
	c.Status = status
	c.DecidedBy = &decidedBy
	c.DecisionNote = &note
	c.DecidedAt = &now
	return nil
}

type fakePolicyReader struct {
	byID map[string]*policy.Policy
}

func (r *fakePolicyReader) FindByID(_ context.Context, id string) (*policy.Policy, error) {
	if p, ok := r.byID[id]; ok {
		return p, nil
	}
	return nil, apperr.NotFound("Policy")
}

type capturingRecorder struct {
	entries []audit.Entry
}

func (rec *capturingRecorder) Record(_ context.Context, entry audit.Entry) {
	rec.entries = append(rec.entries, entry)
}

func activePolicy(id, userID string) *policy.Policy {
	now := time.Now()
	return &policy.Policy{
		ID:        id,
		UserID:    userID,
		Status:    policy.StatusActive,
		StartDate: now.AddDate(0, -1, 0),
		EndDate:   now.AddDate(0, 11, 0),
	}
}

func newTestService(policies ...*policy.Policy) (*claim.Service, *fakeClaimRepository, *capturingRecorder) {
	repo := &fakeClaimRepository{byID: map[string]*claim.Claim{}}
	reader := &fakePolicyReader{byID: map[string]*policy.Policy{}}
	for _, p := range policies {
		reader.byID[p.ID] = p
	}
	recorder := &capturingRecorder{}
	service := claim.NewService(repo, reader, recorder, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return service, repo, recorder
}

func customer(id string) claim.Caller {
	return claim.Caller{UserID: id, Role: sec.RoleCustomer}
}

func agent(id string) claim.Caller {
	return claim.Caller{UserID: id, Role: sec.RoleAgent, IPAddress: "203.0.113.9"}
}

func TestService_File(t *testing.T) {
	ctx := context.Background()

	t.Run("owner_files_against_active_policy", func(t *testing.T) {
		service, repo, recorder := newTestService(activePolicy("pol-1", "user-1"))

		filed, err := service.File(ctx, customer("user-1"), claim.FileInput{
			PolicyID:    "pol-1",
			AmountCents: 120000,
			Reason:      "Windshield replacement after hailstorm",
		})
		require.NoError(t, err)

		assert.Equal(t, claim.StatusPending, filed.Status)
		assert.Nil(t, filed.DecidedBy)
		assert.Contains(t, repo.byID, filed.ID)

		require.Len(t, recorder.entries, 1)
		assert.Equal(t, audit.ActionClaimFiled, recorder.entries[0].Action)
		assert.Equal(t, "user-1", recorder.entries[0].ActorID)
	})

	t.Run("non_owner_sees_not_found", func(t *testing.T) {
		service, _, _ := newTestService(activePolicy("pol-1", "user-1"))

		_, err := service.File(ctx, customer("user-2"), claim.FileInput{
			PolicyID: "pol-1", AmountCents: 100, Reason: "x",
		})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("cancelled_policy_refused", func(t *testing.T) {
		cancelled := activePolicy("pol-1", "user-1")
		cancelled.Status = policy.StatusCancelled
		service, _, _ := newTestService(cancelled)

		_, err := service.File(ctx, customer("user-1"), claim.FileInput{
			PolicyID: "pol-1", AmountCents: 100, Reason: "x",
		})
		require.Error(t, err)
		assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)
	})

	t.Run("expired_coverage_refused", func(t *testing.T) {
		expired := activePolicy("pol-1", "user-1")
		expired.EndDate = time.Now().AddDate(0, 0, -1)
		service, _, _ := newTestService(expired)

		_, err := service.File(ctx, customer("user-1"), claim.FileInput{
			PolicyID: "pol-1", AmountCents: 100, Reason: "x",
		})
		require.Error(t, err)
		assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)
	})
}

func TestService_Decide(t *testing.T) {
	ctx := context.Background()

	fileOne := func(t *testing.T, service *claim.Service) *claim.Claim {
		t.Helper()
		filed, err := service.File(ctx, customer("user-1"), claim.FileInput{
			PolicyID: "pol-1", AmountCents: 50000, Reason: "Burst pipe",
		})
		require.NoError(t, err)
		return filed
	}

	t.Run("agent_approves_pending_claim", func(t *testing.T) {
		service, repo, recorder := newTestService(activePolicy("pol-1", "user-1"))
		filed := fileOne(t, service)

		decided, err := service.Decide(ctx, agent("agent-1"), filed.ID, claim.DecisionInput{
			Approve: true,
			Note:    "Verified invoice and photos",
		})
		require.NoError(t, err)

		assert.Equal(t, claim.StatusApproved, decided.Status)
		require.NotNil(t, decided.DecidedBy)
		assert.Equal(t, "agent-1", *decided.DecidedBy)
		assert.Equal(t, claim.StatusApproved, repo.byID[filed.ID].Status)

		// file + decide
		require.Len(t, recorder.entries, 2)
		entry := recorder.entries[1]
		assert.Equal(t, audit.ActionClaimDecided, entry.Action)
		assert.Equal(t, "agent-1", entry.ActorID)
		assert.Equal(t, claim.StatusApproved, entry.Details["decision"])
	})

	t.Run("rejection_carries_note", func(t *testing.T) {
		service, repo, _ := newTestService(activePolicy("pol-1", "user-1"))
		filed := fileOne(t, service)

		decided, err := service.Decide(ctx, agent("agent-1"), filed.ID, claim.DecisionInput{
			Approve: false,
			Note:    "Damage predates coverage start",
		})
		require.NoError(t, err)
		assert.Equal(t, claim.StatusRejected, decided.Status)
		require.NotNil(t, repo.byID[filed.ID].DecisionNote)
		assert.Equal(t, "Damage predates coverage start", *repo.byID[filed.ID].DecisionNote)
	})

	t.Run("customer_cannot_decide", func(t *testing.T) {
		service, _, _ := newTestService(activePolicy("pol-1", "user-1"))
		filed := fileOne(t, service)

		_, err := service.Decide(ctx, customer("user-1"), filed.ID, claim.DecisionInput{Approve: true})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("decided_claim_is_final", func(t *testing.T) {
		service, _, _ := newTestService(activePolicy("pol-1", "user-1"))
		filed := fileOne(t, service)

		_, err := service.Decide(ctx, agent("agent-1"), filed.ID, claim.DecisionInput{Approve: true, Note: "ok"})
		require.NoError(t, err)

		_, err = service.Decide(ctx, agent("agent-2"), filed.ID, claim.DecisionInput{Approve: false, Note: "no"})
		require.Error(t, err)
		assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)
	})
}
