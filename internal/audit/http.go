// Copyright (c) 2026 Coverdesk. All rights reserved.

package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coverdesk/coverdesk/internal/platform/middleware"
	"github.com/coverdesk/coverdesk/internal/platform/respond"
	"github.com/coverdesk/coverdesk/internal/platform/sec"
	"github.com/coverdesk/coverdesk/pkg/pagination"
)

// Handler exposes the audit trail to administrators.
type Handler struct {
	store Store
}

// NewHandler constructs a new [Handler] with its store dependency.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Routes returns a [chi.Router] for the audit trail.
//
// # Endpoints
//   - GET / : Lists audit records (admin only, paginated).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRoles(sec.RoleAdmin))
		r.Get("/", handler.list)
	})

	return router
}

/*
List returns a page of audit records, newest first.

GET /api/v1/audit

Response:
  - 200: []Record with pagination metadata
  - 401: Unauthenticated: Missing or invalid session token
  - 403: Forbidden: Caller is not an administrator
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	records, total, err := handler.store.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, records, pagination.NewMeta(params.Page, params.Limit, total))
}
