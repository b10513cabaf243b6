package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"changepulse/readiness-backend/internal"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const Issuer = "readiness-backend"

// Principal is the authenticated caller extracted from an access token.
type Principal struct {
	ID uuid.UUID
}

func (p Principal) GetID() uuid.UUID {
	return p.ID
}

type claims struct {
	jwt.RegisteredClaims
}

type Service struct {
	logger     *zap.Logger
	secret     string
	expiration time.Duration
	tracer     trace.Tracer
}

func NewService(logger *zap.Logger, secret string, expiration time.Duration) *Service {
	return &Service{
		logger:     logger,
		secret:     secret,
		expiration: expiration,
		tracer:     otel.Tracer("jwt/service"),
	}
}

// New issues a signed access token for the given user.
func (s *Service) New(ctx context.Context, userID uuid.UUID) (string, error) {
	traceCtx, span := s.tracer.Start(ctx, "New")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	now := time.Now()
	tokenClaims := &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims)
	tokenString, err := token.SignedString([]byte(s.secret))
	if err != nil {
		logger.Error("failed to sign token", zap.Error(err), zap.String("user_id", userID.String()))
		span.RecordError(err)
		return "", err
	}

	logger.Debug("Generated access token", zap.String("user_id", userID.String()))

	return tokenString, nil
}

// Parse verifies the token signature and timestamps and returns the caller.
func (s *Service) Parse(ctx context.Context, tokenString string) (Principal, error) {
	traceCtx, span := s.tracer.Start(ctx, "Parse")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	secret := func(token *jwt.Token) (interface{}, error) {
		return []byte(s.secret), nil
	}

	tokenClaims := &claims{}
	_, err := jwt.ParseWithClaims(tokenString, tokenClaims, secret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			logger.Warn("Failed to parse access token due to malformed structure", zap.String("error", err.Error()))
		case errors.Is(err, jwt.ErrSignatureInvalid):
			logger.Warn("Failed to parse access token due to invalid signature", zap.String("error", err.Error()))
		case errors.Is(err, jwt.ErrTokenExpired):
			logger.Warn("Failed to parse access token due to expired timestamp", zap.String("error", err.Error()))
		default:
			logger.Error("Failed to parse access token", zap.Error(err))
		}
		span.RecordError(err)
		return Principal{}, fmt.Errorf("%w: %v", internal.ErrInvalidAccessToken, err)
	}

	userID, err := uuid.Parse(tokenClaims.Subject)
	if err != nil {
		logger.Error("Failed to parse user ID from token subject", zap.Error(err))
		span.RecordError(err)
		return Principal{}, fmt.Errorf("%w: %v", internal.ErrInvalidAccessToken, err)
	}

	return Principal{ID: userID}, nil
}
