package product

import "time"

// Product is a purchasable insurance offering in the catalogue.
//
// All monetary amounts are integer cents to avoid floating-point drift.
type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Category       string    `json:"category"`
	Description    string    `json:"description,omitempty"`
	PremiumCents   int64     `json:"premium_cents"`
	CoverageCents  int64     `json:"coverage_cents"`
	DurationMonths int       `json:"duration_months"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Catalogue categories accepted by the portal.
var Categories = []string{"auto", "home", "life", "health", "travel"}
