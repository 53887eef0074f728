// Copyright (c) 2026 Coverdesk. All rights reserved.

/*
HTTP delivery layer for profile and user administration.

# Security

All endpoints require an active session. The administrative subtree is
additionally gated by role: listing and reading accounts is open to agents
and admins, mutations are admin only.
*/
package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coverdesk/coverdesk/internal/platform/middleware"
	requestutil "github.com/coverdesk/coverdesk/internal/platform/request"
	"github.com/coverdesk/coverdesk/internal/platform/respond"
	"github.com/coverdesk/coverdesk/internal/platform/sec"
	"github.com/coverdesk/coverdesk/internal/platform/validate"
	"github.com/coverdesk/coverdesk/internal/users/auth"
	"github.com/coverdesk/coverdesk/pkg/pagination"
)

// Handler implements the HTTP layer for user account management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	// Self projection
	router.Get("/me", handler.getMe)

	// Back-office reads
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRoles(sec.RoleAgent, sec.RoleAdmin))
		r.Get("/users", handler.listUsers)
		r.Get("/users/{id}", handler.getUser)
	})

	// Admin mutations
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRoles(sec.RoleAdmin))
		r.Put("/users/{id}/role", handler.changeRole)
		r.Delete("/users/{id}", handler.deactivate)
	})

	return router
}

// # Self Endpoints

/*
GET /api/v1/me.

Description: Retrieves the full private profile of the authenticated user.

Response:
  - 200: User: Fully hydrated user profile
  - 401: Unauthenticated: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Back-Office Endpoints

/*
GET /api/v1/users.

Description: Lists user accounts for back-office review (paginated).

Response:
  - 200: []User with pagination metadata
  - 403: Forbidden: Caller is a customer
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.accountService.ListUsers(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/users/{id}.

Description: Retrieves a single account by ID.

Response:
  - 200: User
  - 404: NotFound: No live account with this ID
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	user, err := handler.accountService.GetProfile(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// changeRoleRequest defines the expected JSON payload for role changes.
type changeRoleRequest struct {
	Role string `json:"role"`
}

/*
PUT /api/v1/users/{id}/role.

Description: Replaces the stored role of the target account. Outstanding
tokens keep their issued role until the target logs in again.

Request:
  - Body: changeRoleRequest (Role)

Response:
  - 204: No Content: Role updated
  - 400: ValidationError: Unknown role
  - 403: Forbidden: Caller is not an administrator
  - 404: NotFound: No live account with this ID
*/
func (handler *Handler) changeRole(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changeRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(auth.FieldRole, input.Role).
		OneOf(auth.FieldRole, input.Role,
			string(sec.RoleCustomer), string(sec.RoleAgent), string(sec.RoleAdmin))

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.accountService.ChangeRole(
		request.Context(),
		MutationContext{ActorID: claims.UserID, IPAddress: requestutil.ClientIP(request)},
		requestutil.ID(request, "id"),
		sec.Role(input.Role),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/users/{id}.

Description: Soft-deletes the target account.

Response:
  - 204: No Content: Account deactivated
  - 403: Forbidden: Caller is not an administrator
  - 404: NotFound: No live account with this ID
  - 422: Unprocessable: Attempted self-deactivation
*/
func (handler *Handler) deactivate(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.accountService.Deactivate(
		request.Context(),
		MutationContext{ActorID: claims.UserID, IPAddress: requestutil.ClientIP(request)},
		requestutil.ID(request, "id"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
