package payment

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

	router.Post("/", handler.record)
	router.Get("/", handler.list)
}

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

type recordPaymentRequest struct {
	PolicyID    string `json:"policy_id"`
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method"`
	Reference   string `json:"reference"`
}

func (handler *Handler) record(writer http.ResponseWriter, request *http.Request) {
	who, err := caller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input recordPaymentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required("policy_id", input.PolicyID).
		UUID("policy_id", input.PolicyID).
		Positive("amount_cents", input.AmountCents).
		Required("method", input.Method).
		OneOf("method", input.Method, Methods...).
		MaxLen("reference", input.Reference, 120)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	payment, err := handler.service.RecordPayment(request.Context(), who, RecordInput{
		PolicyID:    input.PolicyID,
		AmountCents: input.AmountCents,
		Method:      input.Method,
		Reference:   input.Reference,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, payment)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	who, err := caller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	payments, total, err := handler.service.ListPayments(request.Context(), who, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, payments, pagination.NewMeta(params.Page, params.Limit, total))
}
