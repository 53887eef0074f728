package schema

// CoreProductTable represents the 'core.product' table
type CoreProductTable struct {
	Table          string
	ID             string
	Name           string
	Slug           string
	Category       string
	Description    string
	PremiumCents   string
	CoverageCents  string
	DurationMonths string
	IsActive       string
	CreatedAt      string
	UpdatedAt      string
}

var CoreProduct = CoreProductTable{
	Table:          "core.product",
	ID:             "id",
	Name:           "name",
	Slug:           "slug",
	Category:       "category",
	Description:    "description",
	PremiumCents:   "premiumcents",
	CoverageCents:  "coveragecents",
	DurationMonths: "durationmonths",
	IsActive:       "isactive",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}
