package claim

import (
	"context"

	"github.com/coverdesk/coverdesk/pkg/pagination"
)

type Repository interface {
	Create(context context.Context, claim *Claim) error
	FindByID(context context.Context, id string) (*Claim, error)
	ListByUser(context context.Context, userID string, params pagination.Params) ([]Claim, int, error)
	ListAll(context context.Context, params pagination.Params) ([]Claim, int, error)

	// Decide applies an approve/reject decision to a claim.
	Decide(context context.Context, id, status, decidedBy, note string) error
}
