package inbox

import (
	"context"
	"net/http"
	"time"

	"changepulse/readiness-backend/internal"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Response struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	ContentID   string     `json:"contentId"`
	Title       string     `json:"title"`
	IsRead      bool       `json:"isRead"`
	AccessToken string     `json:"accessToken"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

type Store interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]ListByUserRow, error)
	MarkRead(ctx context.Context, userID uuid.UUID, messageID uuid.UUID) error
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
		tracer:        otel.Tracer("inbox/handler"),
		problemWriter: problemWriter,
		store:         store,
	}
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	userID, ok := internal.GetUserIDFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	rows, err := h.store.ListByUser(traceCtx, userID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	response := make([]Response, 0, len(rows))
	for _, row := range rows {
		item := Response{
			ID:          row.ID.String(),
			Type:        string(row.Type),
			ContentID:   row.ContentID.String(),
			Title:       row.Title,
			IsRead:      row.IsRead,
			AccessToken: row.AccessToken,
		}
		if row.CreatedAt.Valid {
			createdAt := row.CreatedAt.Time
			item.CreatedAt = &createdAt
		}
		response = append(response, item)
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, response)
}

func (h *Handler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "MarkReadHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	userID, ok := internal.GetUserIDFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	messageID, err := handlerutil.ParseUUID(r.PathValue("messageId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	if err := h.store.MarkRead(traceCtx, userID, messageID); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
