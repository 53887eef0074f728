// Copyright (c) 2026 Coverdesk. All rights reserved.

package account

import (
	"context"

	"github.com/coverdesk/coverdesk/internal/platform/sec"
	"github.com/coverdesk/coverdesk/internal/users/auth"
	"github.com/coverdesk/coverdesk/pkg/pagination"
)

// # Account Data Access

// AccountRepository defines the administrative data access contract over
// user accounts. It extends the identity lookups with listing and the
// mutations reserved for back-office staff.
type AccountRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *auth.User: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		List returns accounts ordered by creation time along with the total count.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []auth.User: Page of accounts
		  - int: Total account count
		  - error: Retrieval failures
	*/
	List(context context.Context, params pagination.Params) ([]auth.User, int, error)

	/*
		UpdateRole replaces the stored role of an account.

		Description: Outstanding session tokens keep their issued role claim;
		the new role applies from the next login.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - role: sec.Role

		Returns:
		  - error: Persistence failures
	*/
	UpdateRole(context context.Context, userID string, role sec.Role) error

	/*
		SoftDelete marks the account as deleted and inactive.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error
}
