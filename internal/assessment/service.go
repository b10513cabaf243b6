package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"changepulse/readiness-backend/internal"
	"changepulse/readiness-backend/internal/assessment/shared"
	"changepulse/readiness-backend/internal/inbox"
	"changepulse/readiness-backend/internal/question"
	"changepulse/readiness-backend/internal/template"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (Assessment, error)
	GetByID(ctx context.Context, id uuid.UUID) (Assessment, error)
	List(ctx context.Context) ([]Assessment, error)
	ListByProject(ctx context.Context, projectID pgtype.UUID) ([]Assessment, error)
	ListByRecipient(ctx context.Context, userID uuid.UUID) ([]Assessment, error)
	SetTargeting(ctx context.Context, arg SetTargetingParams) (Assessment, error)
	MarkDeployed(ctx context.Context, id uuid.UUID) (Assessment, error)
	SaveAnswers(ctx context.Context, arg SaveAnswersParams) (Assessment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TemplateStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (template.Template, error)
	ListQuestions(ctx context.Context, templateID uuid.UUID) ([]question.Question, error)
}

type RecipientResolver interface {
	ResolveRecipients(ctx context.Context, userIDs []uuid.UUID, groupIDs []uuid.UUID) ([]uuid.UUID, error)
}

type InboxStore interface {
	Create(ctx context.Context, contentType inbox.ContentType, contentID uuid.UUID, title string, recipients []inbox.Recipient) (uuid.UUID, error)
}

type TokenIssuer interface {
	New(ctx context.Context, userID uuid.UUID) (string, error)
}

type Service struct {
	logger        *zap.Logger
	queries       Querier
	tracer        trace.Tracer
	templateStore TemplateStore
	resolver      RecipientResolver
	inboxStore    InboxStore
	tokens        TokenIssuer
}

func NewService(
	logger *zap.Logger,
	db DBTX,
	templateStore TemplateStore,
	resolver RecipientResolver,
	inboxStore InboxStore,
	tokens TokenIssuer,
) *Service {
	return &Service{
		logger:        logger,
		queries:       New(db),
		tracer:        otel.Tracer("assessment/service"),
		templateStore: templateStore,
		resolver:      resolver,
		inboxStore:    inboxStore,
		tokens:        tokens,
	}
}

// Create instantiates a template as a draft assessment. The template's
// questions are snapshotted here; later template edits never affect this
// assessment.
func (s *Service) Create(ctx context.Context, templateID uuid.UUID, projectID *uuid.UUID, name string) (Assessment, error) {
	ctx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	sourceTemplate, err := s.templateStore.GetByID(ctx, templateID)
	if err != nil {
		span.RecordError(err)
		return Assessment{}, err
	}

	questions, err := s.templateStore.ListQuestions(ctx, templateID)
	if err != nil {
		span.RecordError(err)
		return Assessment{}, err
	}
	if len(questions) == 0 {
		span.RecordError(internal.ErrTemplateHasNoQuestions)
		return Assessment{}, internal.ErrTemplateHasNoQuestions
	}

	for i, q := range questions {
		questions[i] = question.ApplyCanonicalOptions(q)
	}

	snapshot, err := json.Marshal(questions)
	if err != nil {
		span.RecordError(err)
		return Assessment{}, fmt.Errorf("encode content snapshot: %w", err)
	}

	if name == "" {
		name = sourceTemplate.Name
	}

	dbParams := map[string]interface{}{
		"template_id": templateID.String(),
		"name":        name,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Create", dbParams)

	project := pgtype.UUID{}
	if projectID != nil {
		project = pgtype.UUID{Bytes: *projectID, Valid: true}
	}

	created, err := s.queries.Create(ctx, CreateParams{
		TemplateID:      templateID,
		ProjectID:       project,
		Name:            name,
		TemplateVersion: sourceTemplate.Version,
		ContentSnapshot: snapshot,
	})
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "create assessment")
		span.RecordError(err)
		return Assessment{}, err
	}

	tracker.SuccessWrite(created.ID.String())

	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Assessment, error) {
	ctx, span := s.tracer.Start(ctx, "GetByID")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "GetByID", map[string]interface{}{"id": id.String()})

	current, err := s.queries.GetByID(ctx, id)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "get assessment by id")
		span.RecordError(err)
		return Assessment{}, err
	}

	tracker.SuccessRead(1, id.String())

	return current, nil
}

// List returns all assessments, optionally narrowed to one project.
func (s *Service) List(ctx context.Context, projectID *uuid.UUID) ([]Assessment, error) {
	ctx, span := s.tracer.Start(ctx, "List")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "List", nil)

	var assessments []Assessment
	var err error
	if projectID != nil {
		assessments, err = s.queries.ListByProject(ctx, pgtype.UUID{Bytes: *projectID, Valid: true})
	} else {
		assessments, err = s.queries.List(ctx)
	}
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list assessments")
		span.RecordError(err)
		return nil, err
	}

	tracker.SuccessRead(len(assessments), "")

	return assessments, nil
}

// ListByRecipient returns the deployed assessments addressed to the user.
func (s *Service) ListByRecipient(ctx context.Context, userID uuid.UUID) ([]Assessment, error) {
	ctx, span := s.tracer.Start(ctx, "ListByRecipient")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "ListByRecipient", map[string]interface{}{"user_id": userID.String()})

	assessments, err := s.queries.ListByRecipient(ctx, userID)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list assessments by recipient")
		span.RecordError(err)
		return nil, err
	}

	tracker.SuccessRead(len(assessments), userID.String())

	return assessments, nil
}

// ScheduleAndTarget resolves the requested users and groups into the stored
// recipient set and records the advisory schedule. Targeting is a draft-only
// operation and must name at least one recipient.
func (s *Service) ScheduleAndTarget(ctx context.Context, id uuid.UUID, userIDs []uuid.UUID, groupIDs []uuid.UUID, scheduledAt *time.Time) (Assessment, error) {
	ctx, span := s.tracer.Start(ctx, "ScheduleAndTarget")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Assessment{}, err
	}
	if current.Status != StatusDraft {
		err := fmt.Errorf("%w: cannot retarget a %s assessment", internal.ErrInvalidState, current.Status)
		span.RecordError(err)
		return Assessment{}, err
	}

	if len(userIDs) == 0 && len(groupIDs) == 0 {
		span.RecordError(internal.ErrRecipientsRequired)
		return Assessment{}, internal.ErrRecipientsRequired
	}

	recipients, err := s.resolver.ResolveRecipients(ctx, userIDs, groupIDs)
	if err != nil {
		span.RecordError(err)
		return Assessment{}, err
	}
	if len(recipients) == 0 {
		// groups may legitimately resolve to nobody
		span.RecordError(internal.ErrRecipientsRequired)
		return Assessment{}, internal.ErrRecipientsRequired
	}

	var scheduled pgtype.Timestamptz
	if scheduledAt != nil {
		scheduled = pgtype.Timestamptz{Time: *scheduledAt, Valid: true}
	}

	dbParams := map[string]interface{}{
		"id":              id.String(),
		"recipient_count": len(recipients),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "SetTargeting", dbParams)

	updated, err := s.queries.SetTargeting(ctx, SetTargetingParams{
		ID:          id,
		Recipients:  recipients,
		ScheduledAt: scheduled,
	})
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "set assessment targeting")
		span.RecordError(err)
		return Assessment{}, err
	}

	tracker.SuccessWrite(id.String())

	return updated, nil
}

// Deploy moves a draft to deployed and fans the notification out to every
// recipient's inbox, each notification carrying a signed access token for
// that recipient. The scheduled time is advisory; deployment happens when
// this is called.
func (s *Service) Deploy(ctx context.Context, id uuid.UUID) (Assessment, error) {
	ctx, span := s.tracer.Start(ctx, "Deploy")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Assessment{}, err
	}

	if !current.Status.CanTransition(StatusDeployed) {
		err := fmt.Errorf("%w: %s -> %s", internal.ErrInvalidState, current.Status, StatusDeployed)
		span.RecordError(err)
		return Assessment{}, err
	}
	if len(current.Recipients) == 0 {
		span.RecordError(internal.ErrRecipientsRequired)
		return Assessment{}, internal.ErrRecipientsRequired
	}

	// Tokens are minted before the status flips so a signing failure leaves
	// the draft untouched.
	notifications := make([]inbox.Recipient, 0, len(current.Recipients))
	for _, userID := range current.Recipients {
		token, err := s.tokens.New(ctx, userID)
		if err != nil {
			span.RecordError(err)
			return Assessment{}, err
		}
		notifications = append(notifications, inbox.Recipient{UserID: userID, AccessToken: token})
	}

	tracker := logutil.StartDBOperation(ctx, logger, "MarkDeployed", map[string]interface{}{"id": id.String()})

	deployed, err := s.queries.MarkDeployed(ctx, id)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "mark assessment deployed")
		span.RecordError(err)
		return Assessment{}, err
	}

	tracker.SuccessWrite(id.String())

	if _, err := s.inboxStore.Create(ctx, inbox.ContentTypeAssessment, deployed.ID, deployed.Name, notifications); err != nil {
		span.RecordError(err)
		return Assessment{}, err
	}

	logger.Info("assessment deployed",
		zap.String("assessment_id", deployed.ID.String()),
		zap.Int("recipient_count", len(deployed.Recipients)))

	return deployed, nil
}

// Submit validates a batch of answers against the frozen snapshot and merges
// them into the stored answer map. The whole batch is checked before anything
// is written: one bad answer rejects the submission with every failure
// reported, and the storage state is untouched.
//
// Resubmitting a question overwrites its previous answer. When every required
// question has an answer after the merge, the assessment completes in the
// same write.
func (s *Service) Submit(ctx context.Context, id uuid.UUID, userID uuid.UUID, answers []shared.AnswerParam) (Assessment, error) {
	ctx, span := s.tracer.Start(ctx, "Submit")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Assessment{}, err
	}

	if current.Status != StatusDeployed {
		err := fmt.Errorf("%w: cannot submit answers to a %s assessment", internal.ErrInvalidState, current.Status)
		span.RecordError(err)
		return Assessment{}, err
	}
	if !slices.Contains(current.Recipients, userID) {
		span.RecordError(internal.ErrNotRecipient)
		return Assessment{}, internal.ErrNotRecipient
	}

	questions, err := current.Snapshot()
	if err != nil {
		span.RecordError(err)
		return Assessment{}, err
	}

	codecs := make(map[string]question.Answerable, len(questions))
	for _, q := range questions {
		codec, err := question.NewAnswerable(q)
		if err != nil {
			span.RecordError(err)
			return Assessment{}, err
		}
		codecs[q.ID.String()] = codec
	}

	merged, err := current.AnswerMap()
	if err != nil {
		span.RecordError(err)
		return Assessment{}, err
	}

	var questionErrors []error
	staged := make(map[string]json.RawMessage, len(answers))
	for _, answer := range answers {
		codec, ok := codecs[answer.QuestionID]
		if !ok {
			questionErrors = append(questionErrors, fmt.Errorf("%w: %s", internal.ErrQuestionNotFound, answer.QuestionID))
			continue
		}

		decoded, err := codec.DecodeRequest(answer.Value)
		if err != nil {
			questionErrors = append(questionErrors, err)
			continue
		}

		encoded, err := codec.EncodeStorage(decoded)
		if err != nil {
			questionErrors = append(questionErrors, err)
			continue
		}

		staged[answer.QuestionID] = encoded
	}

	if len(questionErrors) > 0 {
		err := internal.ErrSubmissionRejected{QuestionErrors: questionErrors}
		span.RecordError(err)
		return Assessment{}, err
	}

	for questionID, value := range staged {
		merged[questionID] = value
	}

	status := current.Status
	completedAt := current.CompletedAt
	if allRequiredAnswered(questions, merged) {
		status = StatusCompleted
		completedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	}

	encoded, err := json.Marshal(merged)
	if err != nil {
		span.RecordError(err)
		return Assessment{}, fmt.Errorf("encode answers: %w", err)
	}

	dbParams := map[string]interface{}{
		"id":           id.String(),
		"answer_count": len(staged),
		"status":       string(status),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "SaveAnswers", dbParams)

	updated, err := s.queries.SaveAnswers(ctx, SaveAnswersParams{
		ID:          id,
		Answers:     encoded,
		Status:      status,
		CompletedAt: completedAt,
	})
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "save assessment answers")
		span.RecordError(err)
		return Assessment{}, err
	}

	tracker.SuccessWrite(id.String())

	return updated, nil
}

// Delete removes an assessment in any state, answers included.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "Delete", map[string]interface{}{"id": id.String()})

	if err := s.queries.Delete(ctx, id); err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "delete assessment")
		span.RecordError(err)
		return err
	}

	tracker.SuccessWrite(id.String())

	return nil
}

// allRequiredAnswered reports whether every required question in the snapshot
// has an entry in the answer map. An empty-string answer counts; only the
// absence of the key means unanswered.
func allRequiredAnswered(questions []question.Question, answers map[string]json.RawMessage) bool {
	for _, q := range questions {
		if !q.Required {
			continue
		}
		if _, ok := answers[q.ID.String()]; !ok {
			return false
		}
	}
	return true
}
