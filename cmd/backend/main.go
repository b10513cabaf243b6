package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"changepulse/readiness-backend/internal"
	"changepulse/readiness-backend/internal/assessment"
	"changepulse/readiness-backend/internal/auth"
	"changepulse/readiness-backend/internal/config"
	"changepulse/readiness-backend/internal/cors"
	"changepulse/readiness-backend/internal/directory"
	"changepulse/readiness-backend/internal/inbox"
	"changepulse/readiness-backend/internal/jwt"
	"changepulse/readiness-backend/internal/results"
	"changepulse/readiness-backend/internal/template"
	"changepulse/readiness-backend/internal/trace"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.6.1"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var AppName = "no-app-name"

var Version = "no-version"

var BuildTime = "no-build-time"

var CommitHash = "no-commit-hash"

var Environment = "no-env"

func main() {
	AppName = os.Getenv("APP_NAME")
	if AppName == "" {
		AppName = "readiness-backend"
	}

	if BuildTime == "no-build-time" {
		now := time.Now()
		BuildTime = "not provided (now: " + now.Format(time.RFC3339) + ")"
	}

	Environment = os.Getenv("ENV")
	if Environment == "" {
		Environment = "no-env"
	}

	appMetadata := []zap.Field{
		zap.String("app_name", AppName),
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit_hash", CommitHash),
		zap.String("environment", Environment),
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v, exiting...", err)
	}
	err = cfg.Validate()
	if err != nil {
		if errors.Is(err, config.ErrDatabaseURLRequired) {
			title := "Database URL is required"
			message := "Please set the DATABASE_URL environment variable or provide a config file with the database_url key."
			message = EarlyApplicationFailed(title, message)
			log.Fatal(message)
		} else {
			log.Fatalf("Failed to validate config: %v, exiting...", err)
		}
	}

	logger, err := initLogger(&cfg, appMetadata)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v, exiting...", err)
	}

	if cfg.Debug {
		logger.Warn("Running in debug mode, make sure to disable it in production")
	}

	if cfg.Secret == config.DefaultSecret && !cfg.Debug {
		logger.Warn("Default secret detected in production environment, replace it with a secure random string")
		cfg.Secret = uuid.New().String()
	}

	logger.Info("Starting application...")

	logger.Info("Starting database migration...")

	err = databaseutil.MigrationUp(cfg.MigrationSource, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to run database migration", zap.Error(err))
	}

	dbPool, err := initDatabasePool(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	shutdown, err := initOpenTelemetry(AppName, Version, BuildTime, CommitHash, Environment, cfg.OtelCollectorUrl)
	if err != nil {
		logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
	}

	validator := internal.NewValidator()
	problemWriter := internal.NewProblemWriter()

	// ============================================
	// Service
	// ============================================

	templateService := template.NewService(logger, dbPool)
	directoryService := directory.NewService(logger, dbPool)
	inboxService := inbox.NewService(logger, dbPool)
	jwtService := jwt.NewService(logger, cfg.Secret, cfg.AccessTokenExpiration)
	assessmentService := assessment.NewService(logger, dbPool, templateService, directoryService, inboxService, jwtService)
	resultsService := results.NewService(logger, assessmentService)

	// ============================================
	// Handler
	// ============================================

	authHandler := auth.NewHandler(logger, validator, problemWriter, directoryService, jwtService)
	templateHandler := template.NewHandler(logger, validator, problemWriter, templateService)
	assessmentHandler := assessment.NewHandler(logger, validator, problemWriter, assessmentService)
	resultsHandler := results.NewHandler(logger, problemWriter, resultsService)
	directoryHandler := directory.NewHandler(logger, problemWriter, directoryService)
	inboxHandler := inbox.NewHandler(logger, problemWriter, inboxService)

	// ============================================
	// Middleware
	// ============================================

	traceMiddleware := trace.NewMiddleware(logger, cfg.Debug)
	corsMiddleware := cors.NewMiddleware(logger, cfg.AllowOrigins)
	jwtMiddleware := jwt.NewMiddleware(logger, jwtService, problemWriter)

	// Basic Middleware (Tracing and Recovery)
	basicMiddleware := middleware.NewSet(traceMiddleware.RecoverMiddleware)
	basicMiddleware = basicMiddleware.Append(traceMiddleware.TraceMiddleware)

	// Auth Middleware
	authMiddleware := middleware.NewSet(traceMiddleware.RecoverMiddleware)
	authMiddleware = authMiddleware.Append(traceMiddleware.TraceMiddleware)
	authMiddleware = authMiddleware.Append(jwtMiddleware.AuthenticateMiddleware)

	// HTTP Server
	mux := http.NewServeMux()

	// Health check route
	mux.Handle("GET /api/healthz", basicMiddleware.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			logger.Error("Failed to write response", zap.Error(err))
		}
	}))

	// Token exchange for the SSO-fronted deployment
	mux.Handle("POST /api/auth/token", basicMiddleware.HandlerFunc(authHandler.TokenHandler))

	// ============================================
	// Template routes
	// ============================================

	mux.Handle("GET /api/assessment-templates", authMiddleware.HandlerFunc(templateHandler.ListHandler))
	mux.Handle("POST /api/assessment-templates", authMiddleware.HandlerFunc(templateHandler.CreateHandler))
	mux.Handle("GET /api/assessment-templates/{templateId}", authMiddleware.HandlerFunc(templateHandler.GetHandler))
	mux.Handle("PUT /api/assessment-templates/{templateId}", authMiddleware.HandlerFunc(templateHandler.UpdateHandler))
	mux.Handle("DELETE /api/assessment-templates/{templateId}", authMiddleware.HandlerFunc(templateHandler.DeleteHandler))
	mux.Handle("POST /api/assessment-templates/{templateId}/duplicate", authMiddleware.HandlerFunc(templateHandler.DuplicateHandler))

	// -- Question Management
	mux.Handle("GET /api/assessment-templates/{templateId}/questions", authMiddleware.HandlerFunc(templateHandler.ListQuestionsHandler))
	mux.Handle("POST /api/assessment-templates/{templateId}/questions", authMiddleware.HandlerFunc(templateHandler.AddQuestionHandler))
	mux.Handle("PUT /api/assessment-questions/{questionId}", authMiddleware.HandlerFunc(templateHandler.UpdateQuestionHandler))
	mux.Handle("DELETE /api/assessment-questions/{questionId}", authMiddleware.HandlerFunc(templateHandler.DeleteQuestionHandler))

	// ============================================
	// Assessment routes
	// ============================================

	mux.Handle("GET /api/assessments", authMiddleware.HandlerFunc(assessmentHandler.ListHandler))
	mux.Handle("POST /api/assessments", authMiddleware.HandlerFunc(assessmentHandler.CreateHandler))
	mux.Handle("GET /api/assessments/{assessmentId}", authMiddleware.HandlerFunc(assessmentHandler.GetHandler))
	mux.Handle("DELETE /api/assessments/{assessmentId}", authMiddleware.HandlerFunc(assessmentHandler.DeleteHandler))

	// -- Lifecycle Operations
	mux.Handle("POST /api/assessments/{assessmentId}/target", authMiddleware.HandlerFunc(assessmentHandler.TargetHandler))
	mux.Handle("POST /api/assessments/{assessmentId}/deploy", authMiddleware.HandlerFunc(assessmentHandler.DeployHandler))
	mux.Handle("POST /api/assessments/{assessmentId}/submit", authMiddleware.HandlerFunc(assessmentHandler.SubmitHandler))

	// -- Results
	mux.Handle("GET /api/assessments/{assessmentId}/results", authMiddleware.HandlerFunc(resultsHandler.GetHandler))
	mux.Handle("GET /api/assessments/{assessmentId}/results/export", authMiddleware.HandlerFunc(resultsHandler.ExportHandler))

	// -- Respondent view
	mux.Handle("GET /api/my-assessments", authMiddleware.HandlerFunc(assessmentHandler.MyAssessmentsHandler))

	// ============================================
	// Directory and Inbox routes
	// ============================================

	mux.Handle("GET /api/users", authMiddleware.HandlerFunc(directoryHandler.ListUsersHandler))
	mux.Handle("GET /api/groups", authMiddleware.HandlerFunc(directoryHandler.ListGroupsHandler))

	mux.Handle("GET /api/inbox", authMiddleware.HandlerFunc(inboxHandler.ListHandler))
	mux.Handle("POST /api/inbox/{messageId}/read", authMiddleware.HandlerFunc(inboxHandler.MarkReadHandler))

	// End of API routes
	// ============================================
	// handle interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// CORS and Entry Point
	entrypoint := corsMiddleware.HandlerFunc(mux.ServeHTTP)

	srv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.Port,
		Handler: entrypoint,
	}

	go func() {
		logger.Info("Starting listening request", zap.String("host", cfg.Host), zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Fail to start server with error", zap.Error(err))
		}
	}()

	// wait for context close
	<-ctx.Done()
	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer otelCancel()
	if err := shutdown(otelCtx); err != nil {
		logger.Error("Forced to shutdown OpenTelemetry", zap.Error(err))
	}

	logger.Info("Successfully shutdown")
}

func initLogger(cfg *config.Config, appMetadata []zap.Field) (*zap.Logger, error) {
	var err error
	var logger *zap.Logger
	if cfg.Debug {
		logger, err = logutil.ZapDevelopmentConfig().Build()
		if err != nil {
			return nil, err
		}
		logger.Info("Running in debug mode", appMetadata...)
	} else {
		logger, err = logutil.ZapProductionConfig().Build()
		if err != nil {
			return nil, err
		}

		logger = logger.With(appMetadata...)
	}
	defer func() {
		err := logger.Sync()
		if err != nil {
			zap.S().Errorw("Failed to sync logger", zap.Error(err))
		}
	}()

	return logger, nil
}

func initDatabasePool(databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	dbPool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}
	return dbPool, nil
}

func initOpenTelemetry(appName, version, buildTime, commitHash, environment, otelCollectorUrl string) (func(context.Context) error, error) {
	ctx := context.Background()

	serviceName := semconv.ServiceNameKey.String(appName)
	serviceVersion := semconv.ServiceVersionKey.String(version)
	serviceNamespace := semconv.ServiceNamespaceKey.String("changepulse")
	serviceCommitHash := attribute.String("service.commit_hash", commitHash)
	serviceEnvironment := semconv.DeploymentEnvironmentKey.String(environment)

	res, err := resource.New(ctx,
		resource.WithAttributes(
			serviceName,
			serviceVersion,
			serviceNamespace,
			serviceCommitHash,
			serviceEnvironment,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	options := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	if otelCollectorUrl != "" {
		conn, err := initGrpcConn(otelCollectorUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
		}

		traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}

		bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
		options = append(options, sdktrace.WithSpanProcessor(bsp))
	}

	tracerProvider := sdktrace.NewTracerProvider(options...)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tracerProvider.Shutdown, nil
}

func initGrpcConn(target string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	return conn, nil
}

func EarlyApplicationFailed(title, action string) string {
	result := `
-----------------------------------------
Application Failed to Start
-----------------------------------------

# What's wrong?
%s

# How to fix it?
%s

`

	result = fmt.Sprintf(result, title, action)
	return result
}
