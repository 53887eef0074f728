package product

import (
	"context"

	"github.com/coverdesk/coverdesk/pkg/pagination"
)

type Repository interface {
	List(context context.Context, params pagination.Params, activeOnly bool) ([]Product, int, error)
	FindByID(context context.Context, id string) (*Product, error)
	FindBySlug(context context.Context, slug string) (*Product, error)
	Create(context context.Context, product *Product) error
	Update(context context.Context, product *Product) error
	Delete(context context.Context, id string) error
}
