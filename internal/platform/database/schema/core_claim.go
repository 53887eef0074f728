package schema

// CoreClaimTable represents the 'core.claim' table
type CoreClaimTable struct {
	Table        string
	ID           string
	PolicyID     string
	UserID       string
	AmountCents  string
	Reason       string
	Status       string
	DecidedBy    string
	DecisionNote string
	DecidedAt    string
	CreatedAt    string
	UpdatedAt    string
}

var CoreClaim = CoreClaimTable{
	Table:        "core.claim",
	ID:           "id",
	PolicyID:     "policyid",
	UserID:       "userid",
	AmountCents:  "amountcents",
	Reason:       "reason",
	Status:       "status",
	DecidedBy:    "decidedby",
	DecisionNote: "decisionnote",
	DecidedAt:    "decidedat",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}
