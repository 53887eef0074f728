package policy

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Lifecycle states of a purchased policy.
const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// Policy is purchased coverage binding a user to a catalogue product.
type Policy struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ProductID    string    `json:"product_id"`
	PolicyNumber string    `json:"policy_number"`
	Status       string    `json:"status"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	PremiumCents int64     `json:"premium_cents"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsActive reports whether the policy currently provides coverage.
func (p *Policy) IsActive(now time.Time) bool {
	return p.Status == StatusActive && !now.Before(p.StartDate) && now.Before(p.EndDate)
}

// NewPolicyNumber generates a human-quotable policy reference, e.g.
// "CVD-2026-4F7A21C9". Uniqueness is enforced by the database index; the
// random suffix makes collisions implausible rather than impossible.
func NewPolicyNumber(now time.Time) string {
	var suffix [4]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		panic("policy: random source unavailable: " + err.Error())
	}
	return fmt.Sprintf("CVD-%d-%X", now.Year(), suffix)
}
