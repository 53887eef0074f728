package claim

import "time"

// Lifecycle states of a filed claim.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Claim is a request for payout against an active policy.
type Claim struct {
	ID           string     `json:"id"`
	PolicyID     string     `json:"policy_id"`
	UserID       string     `json:"user_id"`
	AmountCents  int64      `json:"amount_cents"`
	Reason       string     `json:"reason"`
	Status       string     `json:"status"`
	DecidedBy    *string    `json:"decided_by,omitempty"`
	DecisionNote *string    `json:"decision_note,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
