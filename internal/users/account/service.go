// Copyright (c) 2026 Coverdesk. All rights reserved.

/*
Package account orchestrates user administration for back-office staff.

It covers the self profile projection plus the admin operations: listing
accounts, changing roles, and deactivating users. Every administrative
mutation is written to the audit trail with the acting identity.
*/
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coverdesk/coverdesk/internal/audit"
	"github.com/coverdesk/coverdesk/internal/platform/apperr"
	"github.com/coverdesk/coverdesk/internal/platform/sec"
	"github.com/coverdesk/coverdesk/internal/users/auth"
	"github.com/coverdesk/coverdesk/pkg/pagination"
)

// # Service Layer

// AuditRecorder is the fire-and-forget audit sink used by administrative mutations.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Service orchestrates business logic for user administration.
type Service struct {
	accountRepository AccountRepository
	recorder          AuditRecorder
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(accountRepo AccountRepository, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		accountRepository: accountRepo,
		recorder:          recorder,
		logger:            logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
ListUsers returns a page of user accounts for back-office review.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []auth.User: Page of accounts
  - int: Total account count
  - error: Retrieval failures
*/
func (service *Service) ListUsers(context context.Context, params pagination.Params) ([]auth.User, int, error) {
	return service.accountRepository.List(context, params)
}

// # Administrative Mutations

// MutationContext identifies who performed an administrative change and from where.
type MutationContext struct {
	ActorID   string
	IPAddress string
}

/*
ChangeRole updates the stored role of a target account.

Description: The change is audited. Outstanding session tokens keep the role
claim they were issued with; the new role takes effect when the target next
logs in.

Parameters:
  - context: context.Context
  - actor: MutationContext (the administrator performing the change)
  - targetID: string
  - role: sec.Role

Returns:
  - error: Validation, not-found, or persistence failures
*/
func (service *Service) ChangeRole(context context.Context, actor MutationContext, targetID string, role sec.Role) error {
	if !role.Valid() {
		return apperr.ValidationError("Unknown role", apperr.FieldError{
			Field:   auth.FieldRole,
			Message: "must be one of: customer, agent, admin",
		})
	}

	target, err := service.accountRepository.FindByID(context, targetID)
	if err != nil {
		return err
	}

	if err := service.accountRepository.UpdateRole(context, targetID, role); err != nil {
		return fmt.Errorf("account_service_change_role_failed: %w", err)
	}

	service.logger.Info("user_role_changed",
		slog.String("target_id", targetID),
		slog.String("actor_id", actor.ActorID),
		slog.String("role", string(role)),
	)

	service.recorder.Record(context, audit.Entry{
		Action:  audit.ActionUserRoleChanged,
		ActorID: actor.ActorID,
		Details: map[string]any{
			"target_id": targetID,
			"old_role":  string(target.Role),
			"new_role":  string(role),
		},
		IPAddress: actor.IPAddress,
	})

	return nil
}

/*
Deactivate soft-deletes a target account.

Description: The row is retained for record keeping but the account can no
longer authenticate. Administrators cannot deactivate themselves.

Parameters:
  - context: context.Context
  - actor: MutationContext
  - targetID: string

Returns:
  - error: Validation, not-found, or persistence failures
*/
func (service *Service) Deactivate(context context.Context, actor MutationContext, targetID string) error {
	if actor.ActorID == targetID {
		return apperr.Unprocessable("Administrators cannot deactivate their own account")
	}

	if _, err := service.accountRepository.FindByID(context, targetID); err != nil {
		return err
	}

	if err := service.accountRepository.SoftDelete(context, targetID); err != nil {
		return fmt.Errorf("account_service_deactivate_failed: %w", err)
	}

	service.logger.Info("user_deactivated",
		slog.String("target_id", targetID),
		slog.String("actor_id", actor.ActorID),
	)

	service.recorder.Record(context, audit.Entry{
		Action:    audit.ActionUserDeactivated,
		ActorID:   actor.ActorID,
		Details:   map[string]any{"target_id": targetID},
		IPAddress: actor.IPAddress,
	})

	return nil
}
