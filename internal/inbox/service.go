package inbox

import (
	"context"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Querier interface {
	CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error)
	CreateUserInboxBulk(ctx context.Context, arg CreateUserInboxBulkParams) ([]UserMessage, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]ListByUserRow, error)
	MarkRead(ctx context.Context, arg MarkReadParams) error
}

type Service struct {
	logger  *zap.Logger
	queries Querier
	tracer  trace.Tracer
}

func NewService(logger *zap.Logger, db DBTX) *Service {
	return &Service{
		logger:  logger,
		queries: New(db),
		tracer:  otel.Tracer("inbox/service"),
	}
}

// Create registers a message and delivers it to every recipient's inbox,
// each delivery carrying that recipient's access token. It is the single
// entry point for deployment notifications, so a deploy either notifies the
// full recipient set or fails as a whole.
func (s *Service) Create(ctx context.Context, contentType ContentType, contentID uuid.UUID, title string, recipients []Recipient) (uuid.UUID, error) {
	traceCtx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	entryParams := map[string]interface{}{
		"content_type":    contentType,
		"content_id":      contentID.String(),
		"recipient_count": len(recipients),
	}
	tracker := logutil.StartMethod(traceCtx, logger, "Create", entryParams)

	msgTracker := logutil.StartDBOperation(traceCtx, logger, "CreateMessage", map[string]interface{}{
		"type":       contentType,
		"content_id": contentID.String(),
	})

	message, err := s.queries.CreateMessage(traceCtx, CreateMessageParams{
		Type:      contentType,
		ContentID: contentID,
		Title:     title,
	})
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, msgTracker, "create inbox message")
		span.RecordError(err)
		return uuid.Nil, err
	}

	msgTracker.SuccessWrite(message.ID.String())

	userIDs := make([]uuid.UUID, 0, len(recipients))
	tokens := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		userIDs = append(userIDs, recipient.UserID)
		tokens = append(tokens, recipient.AccessToken)
	}

	bulkTracker := logutil.StartDBOperation(traceCtx, logger, "CreateUserInboxBulk", map[string]interface{}{
		"message_id": message.ID.String(),
	})

	_, err = s.queries.CreateUserInboxBulk(traceCtx, CreateUserInboxBulkParams{
		UserIds:      userIDs,
		MessageID:    message.ID,
		AccessTokens: tokens,
	})
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, bulkTracker, "create user inbox messages in bulk")
		span.RecordError(err)
		return uuid.Nil, err
	}

	bulkTracker.SuccessWriteBulk(len(recipients))

	tracker.Complete(map[string]interface{}{
		"message_id":      message.ID.String(),
		"recipient_count": len(recipients),
	})

	return message.ID, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]ListByUserRow, error) {
	ctx, span := s.tracer.Start(ctx, "ListByUser")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "ListByUser", map[string]interface{}{"user_id": userID.String()})

	messages, err := s.queries.ListByUser(ctx, userID)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list inbox messages")
		span.RecordError(err)
		return nil, err
	}

	tracker.SuccessRead(len(messages), userID.String())

	return messages, nil
}

func (s *Service) MarkRead(ctx context.Context, userID uuid.UUID, messageID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "MarkRead")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "MarkRead", map[string]interface{}{
		"user_id":    userID.String(),
		"message_id": messageID.String(),
	})

	if err := s.queries.MarkRead(ctx, MarkReadParams{UserID: userID, MessageID: messageID}); err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "mark inbox message read")
		span.RecordError(err)
		return err
	}

	tracker.SuccessWrite(messageID.String())

	return nil
}
