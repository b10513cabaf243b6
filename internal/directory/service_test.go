package directory

import (
	"context"
	"errors"
	"testing"

	"changepulse/readiness-backend/internal"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(User)
	return row, args.Error(1)
}

func (m *mockQuerier) ListUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	args := m.Called(ctx, ids)
	rows, _ := args.Get(0).([]User)
	return rows, args.Error(1)
}

func (m *mockQuerier) ListUsers(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]User)
	return rows, args.Error(1)
}

func (m *mockQuerier) GetGroupByID(ctx context.Context, id uuid.UUID) (Group, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(Group)
	return row, args.Error(1)
}

func (m *mockQuerier) ListGroups(ctx context.Context) ([]Group, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]Group)
	return rows, args.Error(1)
}

func (m *mockQuerier) ListGroupMembers(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, groupID)
	rows, _ := args.Get(0).([]uuid.UUID)
	return rows, args.Error(1)
}

func newTestService(queries Querier) *Service {
	return &Service{
		logger:  zap.NewNop(),
		queries: queries,
		tracer:  noop.NewTracerProvider().Tracer("test"),
	}
}

func TestService_ResolveRecipients(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()
	userC := uuid.New()
	groupID := uuid.New()

	t.Run("Should union users and group members without duplicates", func(t *testing.T) {
		queries := &mockQuerier{}
		service := newTestService(queries)

		queries.On("ListUsersByIDs", mock.Anything, []uuid.UUID{userA, userB}).
			Return([]User{{ID: userA}, {ID: userB}}, nil)
		queries.On("GetGroupByID", mock.Anything, groupID).
			Return(Group{ID: groupID, Name: "Operations"}, nil)
		// userB is both targeted directly and a group member
		queries.On("ListGroupMembers", mock.Anything, groupID).
			Return([]uuid.UUID{userB, userC}, nil)

		recipients, err := service.ResolveRecipients(context.Background(), []uuid.UUID{userA, userB}, []uuid.UUID{groupID})

		require.NoError(t, err)
		require.Len(t, recipients, 3)
		require.ElementsMatch(t, []uuid.UUID{userA, userB, userC}, recipients)
	})

	t.Run("Should be deterministic across calls", func(t *testing.T) {
		queries := &mockQuerier{}
		service := newTestService(queries)

		queries.On("ListUsersByIDs", mock.Anything, mock.Anything).
			Return([]User{{ID: userA}, {ID: userB}, {ID: userC}}, nil)

		first, err := service.ResolveRecipients(context.Background(), []uuid.UUID{userC, userA, userB}, nil)
		require.NoError(t, err)
		second, err := service.ResolveRecipients(context.Background(), []uuid.UUID{userA, userB, userC}, nil)
		require.NoError(t, err)

		require.Equal(t, first, second)
	})

	t.Run("Should fail when a user does not exist", func(t *testing.T) {
		queries := &mockQuerier{}
		service := newTestService(queries)

		queries.On("ListUsersByIDs", mock.Anything, mock.Anything).
			Return([]User{{ID: userA}}, nil)

		_, err := service.ResolveRecipients(context.Background(), []uuid.UUID{userA, userB}, nil)

		require.Error(t, err)
		require.True(t, errors.Is(err, internal.ErrUserNotFound))
	})

	t.Run("Should fail when a group does not exist", func(t *testing.T) {
		queries := &mockQuerier{}
		service := newTestService(queries)

		queries.On("GetGroupByID", mock.Anything, groupID).
			Return(Group{}, pgx.ErrNoRows)

		_, err := service.ResolveRecipients(context.Background(), nil, []uuid.UUID{groupID})

		require.Error(t, err)
		require.True(t, errors.Is(err, internal.ErrGroupNotFound))
	})

	t.Run("Should return empty set for empty input", func(t *testing.T) {
		queries := &mockQuerier{}
		service := newTestService(queries)

		recipients, err := service.ResolveRecipients(context.Background(), nil, nil)

		require.NoError(t, err)
		require.Empty(t, recipients)
	})
}
