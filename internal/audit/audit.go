// Copyright (c) 2026 Coverdesk. All rights reserved.

/*
Package audit provides the append-only trail of sensitive portal actions.

Every mutation an agent or administrator performs (role changes, product
edits, policy decisions) is recorded with the acting identity and origin
address. Records are immutable once written.

# Architecture

  - Record: The persisted audit entity.
  - Recorder: Asynchronous, fire-and-forget writer; callers never block on
    audit persistence and never see its failures.
  - Store: Abstracted persistence contract backed by PostgreSQL.
*/
package audit

import (
	"context"
	"time"

	"github.com/coverdesk/coverdesk/pkg/pagination"
)

// # Audit Actions

// Canonical action identifiers recorded by the portal.
const (
	ActionUserRoleChanged = "user.role_changed"
	ActionUserDeactivated = "user.deactivated"
	ActionProductCreated  = "product.created"
	ActionProductUpdated  = "product.updated"
	ActionProductDeleted  = "product.deleted"
	ActionPolicyPurchased = "policy.purchased"
	ActionPolicyCancelled = "policy.cancelled"
	ActionClaimFiled      = "claim.filed"
	ActionClaimDecided    = "claim.decided"
	ActionPaymentRecorded = "payment.recorded"
)

// # Domain Entities

// Record represents a single immutable audit trail entry.
type Record struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	ActorID    string         `json:"actor_id"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ip_address"`
	OccurredAt time.Time      `json:"occurred_at"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Entry is the caller-facing input for recording an action. Identity and
// timestamps are filled in by the [Recorder].
type Entry struct {
	Action    string
	ActorID   string
	Details   map[string]any
	IPAddress string
}

// # Data Access

// Store defines the persistence contract for audit records.
type Store interface {

	/*
		Insert appends a single record to the trail.

		Parameters:
		  - context: context.Context
		  - record: *Record

		Returns:
		  - error: Persistence failures
	*/
	Insert(context context.Context, record *Record) error

	/*
		List returns records ordered newest-first along with the total count.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []Record: Page of records
		  - int: Total record count
		  - error: Retrieval failures
	*/
	List(context context.Context, params pagination.Params) ([]Record, int, error)
}
