package schema

// CorePolicyTable represents the 'core.policy' table
type CorePolicyTable struct {
	Table        string
	ID           string
	UserID       string
	ProductID    string
	PolicyNumber string
	Status       string
	StartDate    string
	EndDate      string
	PremiumCents string
	CreatedAt    string
	UpdatedAt    string
}

var CorePolicy = CorePolicyTable{
	Table:        "core.policy",
	ID:           "id",
	UserID:       "userid",
	ProductID:    "productid",
	PolicyNumber: "policynumber",
	Status:       "status",
	StartDate:    "startdate",
	EndDate:      "enddate",
	PremiumCents: "premiumcents",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}
