package jwt

import (
	"context"
	"net/http"
	"strings"

	"changepulse/readiness-backend/internal"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Middleware struct {
	logger        *zap.Logger
	tracer        trace.Tracer
	service       *Service
	problemWriter *problem.HttpWriter
}

func NewMiddleware(logger *zap.Logger, service *Service, problemWriter *problem.HttpWriter) *Middleware {
	return &Middleware{
		logger:        logger,
		tracer:        otel.Tracer("jwt/middleware"),
		service:       service,
		problemWriter: problemWriter,
	}
}

// AuthenticateMiddleware rejects requests without a valid bearer token and
// stores the caller in the request context for downstream handlers.
func (m *Middleware) AuthenticateMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		traceCtx, span := m.tracer.Start(r.Context(), "AuthMiddleware")
		defer span.End()
		logger := logutil.WithContext(traceCtx, m.logger)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.problemWriter.WriteError(traceCtx, w, internal.ErrMissingAuthHeader, logger)
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			m.problemWriter.WriteError(traceCtx, w, internal.ErrInvalidAuthHeaderFormat, logger)
			return
		}

		principal, err := m.service.Parse(traceCtx, tokenString)
		if err != nil {
			m.problemWriter.WriteError(traceCtx, w, err, logger)
			return
		}

		ctx := context.WithValue(traceCtx, internal.UserContextKey, principal)
		next(w, r.WithContext(ctx))
	}
}
