package payment

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

// PolicyReader is the subset of the policy domain the payment service needs.
type PolicyReader interface {
	FindByID(ctx context.Context, id string) (*policy.Policy, error)
}

// AuditRecorder is the fire-and-forget audit sink for payment records.
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

// RecordInput holds the fields of a premium payment.
type RecordInput struct {
	PolicyID    string
	AmountCents int64
	Method      string
	Reference   string
}

// RecordPayment stores a premium instalment against one of the caller's own
// policies. Cancelled policies still accept payments for arrears.
func (service *Service) RecordPayment(context context.Context, caller Caller, input RecordInput) (*Payment, error) {
	pol, err := service.policies.FindByID(context, input.PolicyID)
	if err != nil {
		return nil, err
	}
	if pol.UserID != caller.UserID {
		return nil, apperr.NotFound("Policy")
	}

	payment := &Payment{
		ID:          uuid.New(),
		PolicyID:    pol.ID,
		UserID:      caller.UserID,
		AmountCents: input.AmountCents,
		Method:      input.Method,
		Reference:   input.Reference,
		PaidAt:      time.Now(),
	}

	if err := service.repo.Create(context, payment); err != nil {
		return nil, err
	}

	service.logger.Info("payment_recorded",
		slog.String("payment_id", payment.ID),
		slog.String("policy_id", pol.ID),
		slog.Int64("amount_cents", payment.AmountCents),
	)

	service.recorder.Record(context, audit.Entry{
		Action:  audit.ActionPaymentRecorded,
		ActorID: caller.UserID,
		Details: map[string]any{
			"payment_id":   payment.ID,
			"policy_id":    pol.ID,
			"amount_cents": payment.AmountCents,
			"method":       payment.Method,
		},
		IPAddress: caller.IPAddress,
	})

	return payment, nil
}

// ListPayments returns the caller's own payments, or every payment for staff.
func (service *Service) ListPayments(context context.Context, caller Caller, params pagination.Params) ([]Payment, int, error) {
	if caller.isStaff() {
		return service.repo.ListAll(context, params)
	}
	return service.repo.ListByUser(context, caller.UserID, params)
}
