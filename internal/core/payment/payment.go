package payment

import "time"

// Payment records a premium instalment received against a policy.
type Payment struct {
	ID          string    `json:"id"`
	PolicyID    string    `json:"policy_id"`
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method"`
	Reference   string    `json:"reference,omitempty"`
	PaidAt      time.Time `json:"paid_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Payment methods accepted by the portal.
var Methods = []string{"card", "bank_transfer", "direct_debit"}
