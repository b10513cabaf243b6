package template

import (
	"context"
	"strings"

	"changepulse/readiness-backend/internal"
	"changepulse/readiness-backend/internal/question"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Querier interface {
	CreateWithQuestions(ctx context.Context, arg CreateParams, questions []CreateQuestionParams) (Template, error)
	Update(ctx context.Context, arg UpdateParams) (Template, error)
	Touch(ctx context.Context, id uuid.UUID) (Template, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Template, error)
	List(ctx context.Context) ([]Template, error)
	CreateQuestion(ctx context.Context, arg CreateQuestionParams) (TemplateQuestion, error)
	UpdateQuestion(ctx context.Context, arg UpdateQuestionParams) (TemplateQuestion, error)
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
	CompactQuestionOrder(ctx context.Context, templateID uuid.UUID) error
	GetQuestionByID(ctx context.Context, id uuid.UUID) (TemplateQuestion, error)
	ListQuestionsByTemplateID(ctx context.Context, templateID uuid.UUID) ([]TemplateQuestion, error)
}

type Service struct {
	logger    *zap.Logger
	queries   Querier
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
}

func NewService(logger *zap.Logger, db DBTX) *Service {
	return &Service{
		logger:    logger,
		queries:   New(db),
		tracer:    otel.Tracer("template/service"),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Create stores a new template at version 1. When no questions are supplied
// it is seeded with a single short text question so the editor never opens on
// an empty page.
func (s *Service) Create(ctx context.Context, name string, description string, questions []question.Question) (Template, error) {
	ctx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	name = strings.TrimSpace(s.sanitizer.Sanitize(name))
	if name == "" {
		return Template{}, internal.ErrTemplateNameEmpty
	}

	if len(questions) == 0 {
		questions = []question.Question{{
			Text: "Untitled question",
			Type: question.QuestionTypeShortText,
		}}
	}

	questionParams := make([]CreateQuestionParams, 0, len(questions))
	for _, q := range questions {
		q = s.sanitizeQuestion(q)
		if err := question.Validate(q); err != nil {
			span.RecordError(err)
			return Template{}, err
		}
		q = question.ApplyCanonicalOptions(q)
		questionParams = append(questionParams, CreateQuestionParams{
			Text:        q.Text,
			Type:        string(q.Type),
			Options:     q.Options,
			Required:    q.Required,
			HelperText:  sanitizedText(s.sanitizer, q.HelperText),
			Placeholder: sanitizedText(s.sanitizer, q.Placeholder),
			Dimension:   sanitizedText(s.sanitizer, q.Dimension),
		})
	}

	dbParams := map[string]interface{}{
		"name": name,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Create", dbParams)

	newTemplate, err := s.queries.CreateWithQuestions(ctx, CreateParams{
		Name:        name,
		Description: sanitizedText(s.sanitizer, description),
	}, questionParams)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "create template with questions")
		span.RecordError(err)
		return Template{}, err
	}

	tracker.SuccessWrite(newTemplate.ID.String())

	return newTemplate, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, name string, description string) (Template, error) {
	ctx, span := s.tracer.Start(ctx, "Update")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	name = strings.TrimSpace(s.sanitizer.Sanitize(name))
	if name == "" {
		return Template{}, internal.ErrTemplateNameEmpty
	}

	dbParams := map[string]interface{}{
		"id":   id.String(),
		"name": name,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Update", dbParams)

	updated, err := s.queries.Update(ctx, UpdateParams{
		ID:          id,
		Name:        name,
		Description: sanitizedText(s.sanitizer, description),
	})
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "update template")
		span.RecordError(err)
		return Template{}, err
	}

	tracker.SuccessWrite(id.String())

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "Delete", map[string]interface{}{"id": id.String()})

	if err := s.queries.Delete(ctx, id); err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "delete template")
		span.RecordError(err)
		return err
	}

	tracker.SuccessWrite(id.String())

	return nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Template, error) {
	ctx, span := s.tracer.Start(ctx, "GetByID")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "GetByID", map[string]interface{}{"id": id.String()})

	currentTemplate, err := s.queries.GetByID(ctx, id)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "get template by id")
		span.RecordError(err)
		return Template{}, err
	}

	tracker.SuccessRead(1, id.String())

	return currentTemplate, nil
}

func (s *Service) List(ctx context.Context) ([]Template, error) {
	ctx, span := s.tracer.Start(ctx, "List")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "List", nil)

	templates, err := s.queries.List(ctx)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list templates")
		span.RecordError(err)
		return nil, err
	}

	tracker.SuccessRead(len(templates), "")

	return templates, nil
}

// ListQuestions returns the template's questions in authoring order, already
// converted to the snapshot shape.
func (s *Service) ListQuestions(ctx context.Context, templateID uuid.UUID) ([]question.Question, error) {
	ctx, span := s.tracer.Start(ctx, "ListQuestions")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "ListQuestionsByTemplateID", map[string]interface{}{"template_id": templateID.String()})

	rows, err := s.queries.ListQuestionsByTemplateID(ctx, templateID)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list template questions")
		span.RecordError(err)
		return nil, err
	}

	tracker.SuccessRead(len(rows), templateID.String())

	questions := make([]question.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, row.ToQuestion())
	}

	return questions, nil
}

// Duplicate copies a template and its questions into a fresh template. The
// copy gets its own identity end to end: new template ID, version reset to 1
// and new question IDs, so edits to either side never leak into the other.
func (s *Service) Duplicate(ctx context.Context, id uuid.UUID) (Template, error) {
	ctx, span := s.tracer.Start(ctx, "Duplicate")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	source, err := s.queries.GetByID(ctx, id)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "get template for duplication")
		span.RecordError(err)
		return Template{}, err
	}

	sourceQuestions, err := s.queries.ListQuestionsByTemplateID(ctx, id)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "list questions for duplication")
		span.RecordError(err)
		return Template{}, err
	}

	questionParams := make([]CreateQuestionParams, 0, len(sourceQuestions))
	for _, sourceQuestion := range sourceQuestions {
		questionParams = append(questionParams, CreateQuestionParams{
			Text:        sourceQuestion.Text,
			Type:        sourceQuestion.Type,
			Options:     sourceQuestion.Options,
			Required:    sourceQuestion.Required,
			HelperText:  sourceQuestion.HelperText,
			Placeholder: sourceQuestion.Placeholder,
			Dimension:   sourceQuestion.Dimension,
		})
	}

	tracker := logutil.StartDBOperation(ctx, logger, "Duplicate", map[string]interface{}{"source_id": id.String()})

	copied, err := s.queries.CreateWithQuestions(ctx, CreateParams{
		Name:        source.Name + " (copy)",
		Description: source.Description,
	}, questionParams)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "create duplicated template")
		span.RecordError(err)
		return Template{}, err
	}

	tracker.SuccessWrite(copied.ID.String())

	return copied, nil
}

// AddQuestion validates and stores a question, then bumps the template
// version. Likert questions always land with the canonical option set.
func (s *Service) AddQuestion(ctx context.Context, templateID uuid.UUID, q question.Question) (question.Question, error) {
	ctx, span := s.tracer.Start(ctx, "AddQuestion")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	q = s.sanitizeQuestion(q)
	if err := question.Validate(q); err != nil {
		span.RecordError(err)
		return question.Question{}, err
	}
	q = question.ApplyCanonicalOptions(q)

	dbParams := map[string]interface{}{
		"template_id": templateID.String(),
		"type":        string(q.Type),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "CreateQuestion", dbParams)

	created, err := s.queries.CreateQuestion(ctx, CreateQuestionParams{
		TemplateID:  templateID,
		Text:        q.Text,
		Type:        string(q.Type),
		Options:     q.Options,
		Required:    q.Required,
		HelperText:  sanitizedText(s.sanitizer, q.HelperText),
		Placeholder: sanitizedText(s.sanitizer, q.Placeholder),
		Dimension:   sanitizedText(s.sanitizer, q.Dimension),
	})
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "create template question")
		span.RecordError(err)
		return question.Question{}, err
	}

	if _, err := s.queries.Touch(ctx, templateID); err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "bump template version")
		span.RecordError(err)
		return question.Question{}, err
	}

	tracker.SuccessWrite(created.ID.String())

	return created.ToQuestion(), nil
}

func (s *Service) UpdateQuestion(ctx context.Context, questionID uuid.UUID, q question.Question) (question.Question, error) {
	ctx, span := s.tracer.Start(ctx, "UpdateQuestion")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	current, err := s.queries.GetQuestionByID(ctx, questionID)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "get template question")
		span.RecordError(err)
		return question.Question{}, err
	}

	q = s.sanitizeQuestion(q)
	if err := question.Validate(q); err != nil {
		span.RecordError(err)
		return question.Question{}, err
	}
	q = question.ApplyCanonicalOptions(q)

	dbParams := map[string]interface{}{
		"id":   questionID.String(),
		"type": string(q.Type),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "UpdateQuestion", dbParams)

	updated, err := s.queries.UpdateQuestion(ctx, UpdateQuestionParams{
		ID:          questionID,
		Text:        q.Text,
		Type:        string(q.Type),
		Options:     q.Options,
		Required:    q.Required,
		HelperText:  sanitizedText(s.sanitizer, q.HelperText),
		Placeholder: sanitizedText(s.sanitizer, q.Placeholder),
		Dimension:   sanitizedText(s.sanitizer, q.Dimension),
	})
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "update template question")
		span.RecordError(err)
		return question.Question{}, err
	}

	if _, err := s.queries.Touch(ctx, current.TemplateID); err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "bump template version")
		span.RecordError(err)
		return question.Question{}, err
	}

	tracker.SuccessWrite(questionID.String())

	return updated.ToQuestion(), nil
}

func (s *Service) DeleteQuestion(ctx context.Context, questionID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "DeleteQuestion")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	current, err := s.queries.GetQuestionByID(ctx, questionID)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "get template question")
		span.RecordError(err)
		return err
	}

	tracker := logutil.StartDBOperation(ctx, logger, "DeleteQuestion", map[string]interface{}{"id": questionID.String()})

	if err := s.queries.DeleteQuestion(ctx, questionID); err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "delete template question")
		span.RecordError(err)
		return err
	}

	if err := s.queries.CompactQuestionOrder(ctx, current.TemplateID); err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "compact question order")
		span.RecordError(err)
		return err
	}

	if _, err := s.queries.Touch(ctx, current.TemplateID); err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "bump template version")
		span.RecordError(err)
		return err
	}

	tracker.SuccessWrite(questionID.String())

	return nil
}

func (s *Service) sanitizeQuestion(q question.Question) question.Question {
	q.Text = strings.TrimSpace(s.sanitizer.Sanitize(q.Text))
	q.HelperText = strings.TrimSpace(s.sanitizer.Sanitize(q.HelperText))
	q.Placeholder = strings.TrimSpace(s.sanitizer.Sanitize(q.Placeholder))
	q.Dimension = strings.TrimSpace(s.sanitizer.Sanitize(q.Dimension))
	for i, option := range q.Options {
		q.Options[i] = s.sanitizer.Sanitize(option)
	}
	return q
}

func sanitizedText(policy *bluemonday.Policy, value string) pgtype.Text {
	value = strings.TrimSpace(policy.Sanitize(value))
	return pgtype.Text{String: value, Valid: value != ""}
}
