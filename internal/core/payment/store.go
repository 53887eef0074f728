package payment

import (
	"context"

	"github.com/coverdesk/coverdesk/pkg/pagination"
)

type Repository interface {
	Create(context context.Context, payment *Payment) error
	ListByUser(context context.Context, userID string, params pagination.Params) ([]Payment, int, error)
	ListAll(context context.Context, params pagination.Params) ([]Payment, int, error)
}
