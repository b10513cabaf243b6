package directory

import (
	"context"
	"fmt"
	"slices"

	"changepulse/readiness-backend/internal"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Querier interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	ListUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	ListUsers(ctx context.Context) ([]User, error)
	GetGroupByID(ctx context.Context, id uuid.UUID) (Group, error)
	ListGroups(ctx context.Context) ([]Group, error)
	ListGroupMembers(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
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
		tracer:  otel.Tracer("directory/service"),
	}
}

// ResolveRecipients flattens explicit users and group memberships into one
// deduplicated recipient set. Unknown user or group IDs fail the whole call;
// a targeting request never silently shrinks. The result is sorted so the
// stored recipient list is deterministic.
func (s *Service) ResolveRecipients(ctx context.Context, userIDs []uuid.UUID, groupIDs []uuid.UUID) ([]uuid.UUID, error) {
	ctx, span := s.tracer.Start(ctx, "ResolveRecipients")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	seen := make(map[uuid.UUID]bool, len(userIDs))

	if len(userIDs) > 0 {
		tracker := logutil.StartDBOperation(ctx, logger, "ListUsersByIDs", map[string]interface{}{"count": len(userIDs)})

		users, err := s.queries.ListUsersByIDs(ctx, userIDs)
		if err != nil {
			err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list users by ids")
			span.RecordError(err)
			return nil, err
		}

		tracker.SuccessRead(len(users), "")

		known := make(map[uuid.UUID]bool, len(users))
		for _, u := range users {
			known[u.ID] = true
		}
		for _, id := range userIDs {
			if !known[id] {
				err := fmt.Errorf("%w: %s", internal.ErrUserNotFound, id)
				span.RecordError(err)
				return nil, err
			}
			seen[id] = true
		}
	}

	for _, groupID := range groupIDs {
		if _, err := s.queries.GetGroupByID(ctx, groupID); err != nil {
			err = fmt.Errorf("%w: %s", internal.ErrGroupNotFound, groupID)
			span.RecordError(err)
			return nil, err
		}

		members, err := s.queries.ListGroupMembers(ctx, groupID)
		if err != nil {
			err = databaseutil.WrapDBError(err, logger, "list group members")
			span.RecordError(err)
			return nil, err
		}

		for _, member := range members {
			seen[member] = true
		}
	}

	recipients := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		recipients = append(recipients, id)
	}
	slices.SortFunc(recipients, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})

	return recipients, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	ctx, span := s.tracer.Start(ctx, "GetUser")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "GetUserByID", map[string]interface{}{"id": id.String()})

	u, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "get user by id")
		span.RecordError(err)
		return User{}, err
	}

	tracker.SuccessRead(1, id.String())

	return u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	ctx, span := s.tracer.Start(ctx, "ListUsers")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "ListUsers", nil)

	users, err := s.queries.ListUsers(ctx)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list users")
		span.RecordError(err)
		return nil, err
	}

	tracker.SuccessRead(len(users), "")

	return users, nil
}

func (s *Service) ListGroups(ctx context.Context) ([]Group, error) {
	ctx, span := s.tracer.Start(ctx, "ListGroups")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "ListGroups", nil)

	groups, err := s.queries.ListGroups(ctx)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list groups")
		span.RecordError(err)
		return nil, err
	}

	tracker.SuccessRead(len(groups), "")

	return groups, nil
}
