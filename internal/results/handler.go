package results

import (
	"context"
	"fmt"
	"net/http"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Store interface {
	Aggregate(ctx context.Context, id uuid.UUID) (Results, error)
	Export(ctx context.Context, id uuid.UUID) (*excelize.File, error)
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
		tracer:        otel.Tracer("results/handler"),
		problemWriter: problemWriter,
		store:         store,
	}
}

func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "GetHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("assessmentId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	report, err := h.store.Aggregate(traceCtx, id)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, report)
}

func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ExportHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("assessmentId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	file, err := h.store.Export(traceCtx, id)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("assessment-%s.xlsx", id)))
	if err := file.Write(w); err != nil {
		logger.Warn("failed to stream workbook", zap.Error(err))
		span.RecordError(err)
	}
}
