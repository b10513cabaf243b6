package auth

import (
	"context"
	"net/http"

	"changepulse/readiness-backend/internal"
	"changepulse/readiness-backend/internal/directory"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type TokenRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (directory.User, error)
}

type TokenIssuer interface {
	New(ctx context.Context, userID uuid.UUID) (string, error)
}

type Handler struct {
	logger        *zap.Logger
	tracer        trace.Tracer
	validator     *validator.Validate
	problemWriter *problem.HttpWriter
	userStore     UserStore
	tokenIssuer   TokenIssuer
}

func NewHandler(
	logger *zap.Logger,
	validator *validator.Validate,
	problemWriter *problem.HttpWriter,
	userStore UserStore,
	tokenIssuer TokenIssuer,
) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("auth/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		userStore:     userStore,
		tokenIssuer:   tokenIssuer,
	}
}

// TokenHandler exchanges a known user ID for an access token. This is the
// trust boundary for an internal tool behind the company SSO proxy; there is
// no password flow here.
func (h *Handler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "TokenHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	var req TokenRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrInvalidRequestBody, logger)
		return
	}

	if _, err := h.userStore.GetUser(traceCtx, userID); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	token, err := h.tokenIssuer.New(traceCtx, userID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, TokenResponse{AccessToken: token})
}
