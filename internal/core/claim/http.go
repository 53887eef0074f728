package claim

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

	router.Post("/", handler.file)
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRoles(sec.RoleAgent, sec.RoleAdmin))
		r.Post("/{id}/decision", handler.decide)
	})
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

type fileClaimRequest struct {
	PolicyID    string `json:"policy_id"`
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

func (handler *Handler) file(writer http.ResponseWriter, request *http.Request) {
	who, err := caller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input fileClaimRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required("policy_id", input.PolicyID).
		UUID("policy_id", input.PolicyID).
		Positive("amount_cents", input.AmountCents).
		Required("reason", input.Reason).
		MaxLen("reason", input.Reason, 2000)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claim, err := handler.service.File(request.Context(), who, FileInput{
		PolicyID:    input.PolicyID,
		AmountCents: input.AmountCents,
		Reason:      input.Reason,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, claim)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	who, err := caller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	claims, total, err := handler.service.ListClaims(request.Context(), who, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, claims, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	who, err := caller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	claim, err := handler.service.GetClaim(request.Context(), who, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, claim)
}

type decisionRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

func (handler *Handler) decide(writer http.ResponseWriter, request *http.Request) {
	who, err := caller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input decisionRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required("note", input.Note).MaxLen("note", input.Note, 2000)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claim, err := handler.service.Decide(request.Context(), who, requestutil.ID(request, "id"), DecisionInput{
		Approve: input.Approve,
		Note:    input.Note,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, claim)
}
