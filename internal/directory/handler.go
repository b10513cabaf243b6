package directory

import (
	"context"
	"net/http"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type GroupResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Store interface {
	ListUsers(ctx context.Context) ([]User, error)
	ListGroups(ctx context.Context) ([]Group, error)
}

type Handler struct {
	logger        *zap.Logger
	tracer        trace.Tracer
	problemWriter *problem.HttpWriter
	store         Store
}

func NewHandler(logger *zap.Logger, problemWriter *problem.HttpWriter, store Store) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("directory/handler"),
		problemWriter: problemWriter,
		store:         store,
	}
}

func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListUsersHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	users, err := h.store.ListUsers(traceCtx)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, UserResponse{
			ID:    u.ID.String(),
			Name:  u.Name,
			Email: u.Email,
		})
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, response)
}

func (h *Handler) ListGroupsHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListGroupsHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	groups, err := h.store.ListGroups(traceCtx)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	response := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		response = append(response, GroupResponse{
			ID:   g.ID.String(),
			Name: g.Name,
		})
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, response)
}
