package schema

// CorePaymentTable represents the 'core.payment' table
type CorePaymentTable struct {
	Table       string
	ID          string
	PolicyID    string
	UserID      string
	AmountCents string
	Method      string
	Reference   string
	PaidAt      string
	CreatedAt   string
}

var CorePayment = CorePaymentTable{
	Table:       "core.payment",
	ID:          "id",
	PolicyID:    "policyid",
	UserID:      "userid",
	AmountCents: "amountcents",
	Method:      "method",
	Reference:   "reference",
	PaidAt:      "paidat",
	CreatedAt:   "createdat",
}
