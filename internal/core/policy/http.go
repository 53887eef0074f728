package policy

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
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.purchase)
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)
	router.Post("/{id}/cancel", handler.cancel)
}

// caller builds the service-level identity from the verified token claims.
func caller(request *http.Request) (Caller, error) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return Caller{}, err
	}
	return Caller{
		UserID:    claims.UserID,
		Role:      sec.Role(claims.Role),
		IPAddress: requestutil.ClientIP(request),
	}, nil
}

type purchaseRequest struct {
	ProductID string `json:"product_id"`
}

func (handler *Handler) purchase(writer http.ResponseWriter, request *http.Request) {
	who, err := caller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input purchaseRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required("product_id", input.ProductID).UUID("product_id", input.ProductID)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	policy, err := handler.service.Purchase(request.Context(), who, input.ProductID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, policy)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	who, err := caller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	policies, total, err := handler.service.ListPolicies(request.Context(), who, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, policies, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	who, err := caller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	policy, err := handler.service.GetPolicy(request.Context(), who, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, policy)
}

func (handler *Handler) cancel(writer http.ResponseWriter, request *http.Request) {
	who, err := caller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	policy, err := handler.service.Cancel(request.Context(), who, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, policy)
}
