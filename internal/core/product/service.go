package product

import (
	"context"
	"log/slog"

	"github.com/coverdesk/coverdesk/internal/audit"
	"github.com/coverdesk/coverdesk/internal/platform/apperr"
	"github.com/coverdesk/coverdesk/pkg/pagination"
	"github.com/coverdesk/coverdesk/pkg/slug"
	"github.com/coverdesk/coverdesk/pkg/uuid"
)

// AuditRecorder is the fire-and-forget audit sink for catalogue mutations.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

type Service struct {
	repo     Repository
	recorder AuditRecorder
	logger   *slog.Logger
}

func NewService(repo Repository, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		logger:   logger,
	}
}

// Actor identifies the administrator performing a catalogue mutation.
type Actor struct {
	ID        string
	IPAddress string
}

func (service *Service) ListProducts(context context.Context, params pagination.Params, includeInactive bool) ([]Product, int, error) {
	return service.repo.List(context, params, !includeInactive)
}

func (service *Service) GetProduct(context context.Context, id string) (*Product, error) {
	return service.repo.FindByID(context, id)
}

func (service *Service) GetProductBySlug(context context.Context, productSlug string) (*Product, error) {
	return service.repo.FindBySlug(context, productSlug)
}

// CreateInput holds the admin-supplied catalogue fields.
type CreateInput struct {
	Name           string
	Category       string
	Description    string
	PremiumCents   int64
	CoverageCents  int64
	DurationMonths int
}

func (service *Service) CreateProduct(context context.Context, actor Actor, input CreateInput) (*Product, error) {
	product := &Product{
		ID:             uuid.New(),
		Name:           input.Name,
		Slug:           slug.From(input.Name),
		Category:       input.Category,
		Description:    input.Description,
		PremiumCents:   input.PremiumCents,
		CoverageCents:  input.CoverageCents,
		DurationMonths: input.DurationMonths,
		IsActive:       true,
	}

	if err := service.repo.Create(context, product); err != nil {
		return nil, err
	}

	service.logger.Info("product_created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	service.recorder.Record(context, audit.Entry{
		Action:  audit.ActionProductCreated,
		ActorID: actor.ID,
		Details: map[string]any{
			"product_id": product.ID,
			"slug":       product.Slug,
		},
		IPAddress: actor.IPAddress,
	})

	return product, nil
}

// UpdateInput holds the mutable subset of catalogue fields. Nil means unchanged.
type UpdateInput struct {
	Name           *string
	Category       *string
	Description    *string
	PremiumCents   *int64
	CoverageCents  *int64
	DurationMonths *int
	IsActive       *bool
}

func (service *Service) UpdateProduct(context context.Context, actor Actor, id string, input UpdateInput) (*Product, error) {
	product, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
		product.Slug = slug.From(*input.Name)
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.PremiumCents != nil {
		product.PremiumCents = *input.PremiumCents
	}
	if input.CoverageCents != nil {
		product.CoverageCents = *input.CoverageCents
	}
	if input.DurationMonths != nil {
		product.DurationMonths = *input.DurationMonths
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if product.PremiumCents <= 0 || product.CoverageCents <= 0 || product.DurationMonths <= 0 {
		return nil, apperr.Unprocessable("Premium, coverage, and duration must be positive")
	}

	if err := service.repo.Update(context, product); err != nil {
		return nil, err
	}

	service.recorder.Record(context, audit.Entry{
		Action:    audit.ActionProductUpdated,
		ActorID:   actor.ID,
		Details:   map[string]any{"product_id": product.ID},
		IPAddress: actor.IPAddress,
	})

	return product, nil
}

func (service *Service) DeleteProduct(context context.Context, actor Actor, id string) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.recorder.Record(context, audit.Entry{
		Action:    audit.ActionProductDeleted,
		ActorID:   actor.ID,
		Details:   map[string]any{"product_id": id},
		IPAddress: actor.IPAddress,
	})

	return nil
}
