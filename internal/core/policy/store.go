package policy

import (
	"context"

	"github.com/coverdesk/coverdesk/pkg/pagination"
)

type Repository interface {
	Create(context context.Context, policy *Policy) error
	FindByID(context context.Context, id string) (*Policy, error)

	// ListByUser returns policies belonging to one user, newest first.
	ListByUser(context context.Context, userID string, params pagination.Params) ([]Policy, int, error)

	// ListAll returns every policy, newest first. Reserved for staff views.
	ListAll(context context.Context, params pagination.Params) ([]Policy, int, error)

	// UpdateStatus transitions a policy's lifecycle state.
	UpdateStatus(context context.Context, id, status string) error
}
