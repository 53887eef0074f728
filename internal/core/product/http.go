package product

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coverdesk/coverdesk/internal/platform/middleware"
	requestutil "github.com/coverdesk/coverdesk/internal/platform/request"
	"github.com/coverdesk/coverdesk/internal/platform/respond"
	"github.com/coverdesk/coverdesk/internal/platform/sec"
	"github.com/coverdesk/coverdesk/internal/platform/validate"
	"github.com/coverdesk/coverdesk/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public catalogue
	router.Get("/", handler.list)
	router.Get("/{slug}", handler.getBySlug)

	// Admin mutations
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRoles(sec.RoleAdmin))
		r.Post("/", handler.create)
		r.Put("/{id}", handler.update)
		r.Delete("/{id}", handler.delete)
	})
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	// Staff may inspect retired products; the public sees only active ones
	includeInactive := request.URL.Query().Get("include_inactive") == "true" &&
		requestutil.Claims(request) != nil &&
		sec.Role(requestutil.Claims(request).Role).In(sec.RoleAgent, sec.RoleAdmin)

	products, total, err := handler.service.ListProducts(request.Context(), params, includeInactive)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, products, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	productSlug := chi.URLParam(request, "slug")

	product, err := handler.service.GetProductBySlug(request.Context(), productSlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, product)
}

type createProductRequest struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	PremiumCents   int64  `json:"premium_cents"`
	CoverageCents  int64  `json:"coverage_cents"`
	DurationMonths int    `json:"duration_months"`
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createProductRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required("name", input.Name).
		MaxLen("name", input.Name, 160).
		Required("category", input.Category).
		OneOf("category", input.Category, Categories...).
		Positive("premium_cents", input.PremiumCents).
		Positive("coverage_cents", input.CoverageCents).
		Range("duration_months", input.DurationMonths, 1, 600)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	product, err := handler.service.CreateProduct(
		request.Context(),
		Actor{ID: claims.UserID, IPAddress: requestutil.ClientIP(request)},
		CreateInput{
			Name:           input.Name,
			Category:       input.Category,
			Description:    input.Description,
			PremiumCents:   input.PremiumCents,
			CoverageCents:  input.CoverageCents,
			DurationMonths: input.DurationMonths,
		},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, product)
}

type updateProductRequest struct {
	Name           *string `json:"name"`
	Category       *string `json:"category"`
	Description    *string `json:"description"`
	PremiumCents   *int64  `json:"premium_cents"`
	CoverageCents  *int64  `json:"coverage_cents"`
	DurationMonths *int    `json:"duration_months"`
	IsActive       *bool   `json:"is_active"`
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProductRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	if input.Name != nil {
		v.Required("name", *input.Name).MaxLen("name", *input.Name, 160)
	}
	if input.Category != nil {
		v.OneOf("category", *input.Category, Categories...)
	}
	if input.PremiumCents != nil {
		v.Positive("premium_cents", *input.PremiumCents)
	}
	if input.CoverageCents != nil {
		v.Positive("coverage_cents", *input.CoverageCents)
	}
	if input.DurationMonths != nil {
		v.Range("duration_months", *input.DurationMonths, 1, 600)
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	product, err := handler.service.UpdateProduct(
		request.Context(),
		Actor{ID: claims.UserID, IPAddress: requestutil.ClientIP(request)},
		requestutil.ID(request, "id"),
		UpdateInput{
			Name:           input.Name,
			Category:       input.Category,
			Description:    input.Description,
			PremiumCents:   input.PremiumCents,
			CoverageCents:  input.CoverageCents,
			DurationMonths: input.DurationMonths,
			IsActive:       input.IsActive,
		},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, product)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.DeleteProduct(
		request.Context(),
		Actor{ID: claims.UserID, IPAddress: requestutil.ClientIP(request)},
		requestutil.ID(request, "id"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
