package policy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/coverdesk/coverdesk/internal/audit"
	"github.com/coverdesk/coverdesk/internal/core/product"
	"github.com/coverdesk/coverdesk/internal/platform/apperr"
	"github.com/coverdesk/coverdesk/internal/platform/dberr"
	"github.com/coverdesk/coverdesk/internal/platform/sec"
	"github.com/coverdesk/coverdesk/pkg/pagination"
	"github.com/coverdesk/coverdesk/pkg/uuid"
)

// ProductCatalogue is the subset of the product domain the policy service needs.
type ProductCatalogue interface {
	GetProduct(ctx context.Context, id string) (*product.Product, error)
}

// AuditRecorder is the fire-and-forget audit sink for policy mutations.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

type Service struct {
	repo      Repository
	catalogue ProductCatalogue
	recorder  AuditRecorder
	logger    *slog.Logger
}

func NewService(repo Repository, catalogue ProductCatalogue, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		catalogue: catalogue,
		recorder:  recorder,
		logger:    logger,
	}
}

// Caller identifies the authenticated user driving an operation.
type Caller struct {
	UserID    string
	Role      sec.Role
	IPAddress string
}

// isStaff reports whether the caller may see and act on other users' policies.
func (c Caller) isStaff() bool {
	return c.Role.In(sec.RoleAgent, sec.RoleAdmin)
}

/*
Purchase binds the calling user to a catalogue product.

The premium is copied from the product at purchase time so later catalogue
repricing never rewrites existing contracts. Coverage runs from now for the
product's configured duration.
*/
func (service *Service) Purchase(context context.Context, caller Caller, productID string) (*Policy, error) {
	prod, err := service.catalogue.GetProduct(context, productID)
	if err != nil {
		return nil, err
	}
	if !prod.IsActive {
		return nil, apperr.Unprocessable("Product is no longer offered")
	}

	now := time.Now()
	policy := &Policy{
		ID:           uuid.New(),
		UserID:       caller.UserID,
		ProductID:    prod.ID,
		PolicyNumber: NewPolicyNumber(now),
		Status:       StatusActive,
		StartDate:    now,
		EndDate:      now.AddDate(0, prod.DurationMonths, 0),
		PremiumCents: prod.PremiumCents,
	}

	if err := service.repo.Create(context, policy); err != nil {
		return nil, err
	}

	service.logger.Info("policy_purchased",
		slog.String("policy_id", policy.ID),
		slog.String("user_id", caller.UserID),
		slog.String("product_id", prod.ID),
	)

	service.recorder.Record(context, audit.Entry{
		Action:  audit.ActionPolicyPurchased,
		ActorID: caller.UserID,
		Details: map[string]any{
			"policy_id":     policy.ID,
			"policy_number": policy.PolicyNumber,
			"product_id":    prod.ID,
			"premium_cents": policy.PremiumCents,
		},
		IPAddress: caller.IPAddress,
	})

	return policy, nil
}

// ListPolicies returns the caller's own policies, or every policy for staff.
func (service *Service) ListPolicies(context context.Context, caller Caller, params pagination.Params) ([]Policy, int, error) {
	if caller.isStaff() {
		return service.repo.ListAll(context, params)
	}
	return service.repo.ListByUser(context, caller.UserID, params)
}

// GetPolicy returns one policy, visible to its owner and to staff.
func (service *Service) GetPolicy(context context.Context, caller Caller, id string) (*Policy, error) {
	policy, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if policy.UserID != caller.UserID && !caller.isStaff() {
		// Hide existence from strangers rather than confirming it with a 403
		return nil, apperr.NotFound("Policy")
	}

	return policy, nil
}

/*
Cancel transitions an active policy to cancelled.

The owner may cancel their own policy; admins may cancel any. Agents have
read access only. Only active policies can be cancelled.
*/
func (service *Service) Cancel(context context.Context, caller Caller, id string) (*Policy, error) {
	policy, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	isOwner := policy.UserID == caller.UserID
	if !isOwner && !caller.Role.In(sec.RoleAdmin) {
		if caller.isStaff() {
			return nil, apperr.Forbidden("Agents cannot cancel policies")
		}
		return nil, apperr.NotFound("Policy")
	}

	if policy.Status != StatusActive {
		return nil, apperr.Unprocessable("Only active policies can be cancelled")
	}

	if err := service.repo.UpdateStatus(context, id, StatusCancelled); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			// A concurrent settle landed between our read and write; the
			// outcome is the same as failing the pre-check above, and the
			// winner already wrote the audit entry.
			return nil, apperr.Unprocessable("Only active policies can be cancelled")
		}
		return nil, err
	}
	policy.Status = StatusCancelled

	service.recorder.Record(context, audit.Entry{
		Action:  audit.ActionPolicyCancelled,
		ActorID: caller.UserID,
		Details: map[string]any{
			"policy_id":     policy.ID,
			"policy_number": policy.PolicyNumber,
			"owner_id":      policy.UserID,
		},
		IPAddress: caller.IPAddress,
	})

	return policy, nil
}
