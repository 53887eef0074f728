package claim

import (
	"context"
	"log/slog"
	"time"

	"github.com/coverdesk/coverdesk/internal/audit"
	"github.com/coverdesk/coverdesk/internal/core/policy"
	"github.com/coverdesk/coverdesk/internal/platform/apperr"
	"github.com/coverdesk/coverdesk/internal/platform/sec"
	"github.com/coverdesk/coverdesk/pkg/pagination"
	"github.com/coverdesk/coverdesk/pkg/uuid"
)

// PolicyReader is the subset of the policy domain the claim service needs.
type PolicyReader interface {
	FindByID(ctx context.Context, id string) (*policy.Policy, error)
}

// AuditRecorder is the fire-and-forget audit sink for claim mutations.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

type Service struct {
	repo     Repository
	policies PolicyReader
	recorder AuditRecorder
	logger   *slog.Logger
}

func NewService(repo Repository, policies PolicyReader, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		policies: policies,
		recorder: recorder,
		logger:   logger,
	}
}

// Caller identifies the authenticated user driving an operation.
type Caller struct {
	UserID    string
	Role      sec.Role
	IPAddress string
}

func (c Caller) isStaff() bool {
	return c.Role.In(sec.RoleAgent, sec.RoleAdmin)
}

// FileInput holds the claimant-supplied fields.
type FileInput struct {
	PolicyID    string
	AmountCents int64
	Reason      string
}

/*
File opens a pending claim against one of the caller's own active policies.

A claim can only be filed by the policy owner, only while the policy
provides coverage, and never for more than the claimed policy's product
coverage ceiling enforced downstream by the back office.
*/
func (service *Service) File(context context.Context, caller Caller, input FileInput) (*Claim, error) {
	pol, err := service.policies.FindByID(context, input.PolicyID)
	if err != nil {
		return nil, err
	}

	if pol.UserID != caller.UserID {
		// Hide existence from non-owners
		return nil, apperr.NotFound("Policy")
	}
	if !pol.IsActive(time.Now()) {
		return nil, apperr.Unprocessable("Claims can only be filed against active policies")
	}

	claim := &Claim{
		ID:          uuid.New(),
		PolicyID:    pol.ID,
		UserID:      caller.UserID,
		AmountCents: input.AmountCents,
		Reason:      input.Reason,
		Status:      StatusPending,
	}

	if err := service.repo.Create(context, claim); err != nil {
		return nil, err
	}

	service.logger.Info("claim_filed",
		slog.String("claim_id", claim.ID),
		slog.String("policy_id", pol.ID),
		slog.Int64("amount_cents", claim.AmountCents),
	)

	service.recorder.Record(context, audit.Entry{
		Action:  audit.ActionClaimFiled,
		ActorID: caller.UserID,
		Details: map[string]any{
			"claim_id":     claim.ID,
			"policy_id":    pol.ID,
			"amount_cents": claim.AmountCents,
		},
		IPAddress: caller.IPAddress,
	})

	return claim, nil
}

// ListClaims returns the caller's own claims, or every claim for staff.
func (service *Service) ListClaims(context context.Context, caller Caller, params pagination.Params) ([]Claim, int, error) {
	if caller.isStaff() {
		return service.repo.ListAll(context, params)
	}
	return service.repo.ListByUser(context, caller.UserID, params)
}

// GetClaim returns one claim, visible to the claimant and to staff.
func (service *Service) GetClaim(context context.Context, caller Caller, id string) (*Claim, error) {
	claim, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if claim.UserID != caller.UserID && !caller.isStaff() {
		return nil, apperr.NotFound("Claim")
	}

	return claim, nil
}

// DecisionInput holds the adjudication outcome.
type DecisionInput struct {
	Approve bool
	Note    string
}

/*
Decide adjudicates a pending claim.

Only agents and admins may decide, and only pending claims are decidable.
The underlying store guards the pending state, so two racing decisions
settle first-writer-wins.
*/
func (service *Service) Decide(context context.Context, caller Caller, id string, input DecisionInput) (*Claim, error) {
	if !caller.isStaff() {
		return nil, apperr.Forbidden("Only agents and administrators decide claims")
	}

	claim, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}
	if claim.Status != StatusPending {
		return nil, apperr.Unprocessable("Claim has already been decided")
	}

	status := StatusRejected
	if input.Approve {
		status = StatusApproved
	}

	if err := service.repo.Decide(context, id, status, caller.UserID, input.Note); err != nil {
		return nil, err
	}

	now := time.Now()
	claim.Status = status
	claim.DecidedBy = &caller.UserID
	claim.DecisionNote = &input.Note
	claim.DecidedAt = &now

	service.recorder.Record(context, audit.Entry{
		Action:  audit.ActionClaimDecided,
		ActorID: caller.UserID,
		Details: map[string]any{
			"claim_id":     claim.ID,
			"policy_id":    claim.PolicyID,
			"decision":     status,
			"amount_cents": claim.AmountCents,
		},
		IPAddress: caller.IPAddress,
	})

	return claim, nil
}
