package assessment

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"changepulse/readiness-backend/internal"
	"changepulse/readiness-backend/internal/assessment/shared"
	"changepulse/readiness-backend/internal/question"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Request accepts the older client aliases: title for name and assessmentType
// for templateId.
type Request struct {
	TemplateID     string `json:"templateId" validate:"omitempty,uuid"`
	AssessmentType string `json:"assessmentType" validate:"omitempty,uuid"`
	ProjectID      string `json:"projectId" validate:"omitempty,uuid"`
	Name           string `json:"name"`
	Title          string `json:"title"`
}

func (r Request) ResolvedName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Title
}

func (r Request) ResolvedTemplateID() string {
	if r.TemplateID != "" {
		return r.TemplateID
	}
	return r.AssessmentType
}

type TargetRequest struct {
	UserIDs     []string   `json:"userIds" validate:"omitempty,dive,uuid"`
	GroupIDs    []string   `json:"groupIds" validate:"omitempty,dive,uuid"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

// SubmitRequest carries answers keyed by question ID; results is the older
// client alias for the same map.
type SubmitRequest struct {
	Results map[string]json.RawMessage `json:"results"`
	Answers map[string]json.RawMessage `json:"answers"`
}

func (r SubmitRequest) ResolvedAnswers() map[string]json.RawMessage {
	if len(r.Results) > 0 {
		return r.Results
	}
	return r.Answers
}

type Response struct {
	ID              string     `json:"id"`
	TemplateID      string     `json:"templateId"`
	ProjectID       *string    `json:"projectId"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	TemplateVersion int32      `json:"templateVersion"`
	Recipients      []string   `json:"recipients"`
	ScheduledAt     *time.Time `json:"scheduledAt"`
	DeployedAt      *time.Time `json:"deployedAt"`
	CompletedAt     *time.Time `json:"completedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// RecipientResponse is the respondent-facing list item; a completed
// assessment is locked against further submissions.
type RecipientResponse struct {
	Response
	Locked  bool       `json:"locked"`
	DueTime *time.Time `json:"dueTime"`
}

type DetailResponse struct {
	Response
	Questions []question.Question        `json:"questions"`
	Answers   map[string]json.RawMessage `json:"answers"`
}

func ToResponse(a Assessment) Response {
	recipients := make([]string, 0, len(a.Recipients))
	for _, id := range a.Recipients {
		recipients = append(recipients, id.String())
	}

	var projectID *string
	if a.ProjectID.Valid {
		value := uuid.UUID(a.ProjectID.Bytes).String()
		projectID = &value
	}

	return Response{
		ID:              a.ID.String(),
		TemplateID:      a.TemplateID.String(),
		ProjectID:       projectID,
		Name:            a.Name,
		Status:          statusToUppercase(a.Status),
		TemplateVersion: a.TemplateVersion,
		Recipients:      recipients,
		ScheduledAt:     timePtr(a.ScheduledAt),
		DeployedAt:      timePtr(a.DeployedAt),
		CompletedAt:     timePtr(a.CompletedAt),
		CreatedAt:       a.CreatedAt.Time,
		UpdatedAt:       a.UpdatedAt.Time,
	}
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

type Store interface {
	Create(ctx context.Context, templateID uuid.UUID, projectID *uuid.UUID, name string) (Assessment, error)
	GetByID(ctx context.Context, id uuid.UUID) (Assessment, error)
	List(ctx context.Context, projectID *uuid.UUID) ([]Assessment, error)
	ListByRecipient(ctx context.Context, userID uuid.UUID) ([]Assessment, error)
	ScheduleAndTarget(ctx context.Context, id uuid.UUID, userIDs []uuid.UUID, groupIDs []uuid.UUID, scheduledAt *time.Time) (Assessment, error)
	Deploy(ctx context.Context, id uuid.UUID) (Assessment, error)
	Submit(ctx context.Context, id uuid.UUID, userID uuid.UUID, answers []shared.AnswerParam) (Assessment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	logger *zap.Logger
	tracer trace.Tracer

	validator     *validator.Validate
	problemWriter *problem.HttpWriter

	store Store
}

func NewHandler(
	logger *zap.Logger,
	validator *validator.Validate,
	problemWriter *problem.HttpWriter,
	store Store,
) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("assessment/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		store:         store,
	}
}

func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "CreateHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	var req Request
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	if req.ResolvedTemplateID() == "" {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrInvalidRequestBody, logger)
		return
	}
	templateID, err := handlerutil.ParseUUID(req.ResolvedTemplateID())
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var projectID *uuid.UUID
	if req.ProjectID != "" {
		id, err := handlerutil.ParseUUID(req.ProjectID)
		if err != nil {
			h.problemWriter.WriteError(traceCtx, w, err, logger)
			return
		}
		projectID = &id
	}

	created, err := h.store.Create(traceCtx, templateID, projectID, req.ResolvedName())
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusCreated, ToResponse(created))
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

	current, err := h.store.GetByID(traceCtx, id)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	questions, err := current.Snapshot()
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	answers, err := current.AnswerMap()
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, DetailResponse{
		Response:  ToResponse(current),
		Questions: questions,
		Answers:   answers,
	})
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	var projectID *uuid.UUID
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		id, err := handlerutil.ParseUUID(raw)
		if err != nil {
			h.problemWriter.WriteError(traceCtx, w, err, logger)
			return
		}
		projectID = &id
	}

	assessments, err := h.store.List(traceCtx, projectID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	responses := make([]Response, 0, len(assessments))
	for _, a := range assessments {
		responses = append(responses, ToResponse(a))
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, responses)
}

func (h *Handler) TargetHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "TargetHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("assessmentId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var req TargetRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	userIDs, err := parseUUIDs(req.UserIDs)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}
	groupIDs, err := parseUUIDs(req.GroupIDs)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	updated, err := h.store.ScheduleAndTarget(traceCtx, id, userIDs, groupIDs, req.ScheduledAt)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(updated))
}

func (h *Handler) DeployHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "DeployHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("assessmentId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	deployed, err := h.store.Deploy(traceCtx, id)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(deployed))
}

func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "SubmitHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("assessmentId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	userID, ok := internal.GetUserIDFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	var req SubmitRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	submitted := req.ResolvedAnswers()
	if len(submitted) == 0 {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrInvalidRequestBody, logger)
		return
	}

	questionIDs := make([]string, 0, len(submitted))
	for questionID := range submitted {
		questionIDs = append(questionIDs, questionID)
	}
	sort.Strings(questionIDs)

	answers := make([]shared.AnswerParam, 0, len(submitted))
	for _, questionID := range questionIDs {
		answers = append(answers, shared.AnswerParam{
			QuestionID: questionID,
			Value:      submitted[questionID],
		})
	}

	updated, err := h.store.Submit(traceCtx, id, userID, answers)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(updated))
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "DeleteHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("assessmentId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	if err := h.store.Delete(traceCtx, id); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusNoContent, nil)
}

// MyAssessmentsHandler lists the deployed assessments addressed to the
// authenticated user.
func (h *Handler) MyAssessmentsHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "MyAssessmentsHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	userID, ok := internal.GetUserIDFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	assessments, err := h.store.ListByRecipient(traceCtx, userID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	responses := make([]RecipientResponse, 0, len(assessments))
	for _, a := range assessments {
		responses = append(responses, RecipientResponse{
			Response: ToResponse(a),
			Locked:   a.Status == StatusCompleted,
			DueTime:  timePtr(a.ScheduledAt),
		})
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, responses)
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := handlerutil.ParseUUID(value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
