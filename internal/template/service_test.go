package template

import (
	"context"
	"errors"
	"testing"

	"changepulse/readiness-backend/internal"
	"changepulse/readiness-backend/internal/question"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) CreateWithQuestions(ctx context.Context, arg CreateParams, questions []CreateQuestionParams) (Template, error) {
	args := m.Called(ctx, arg, questions)
	row, _ := args.Get(0).(Template)
	return row, args.Error(1)
}

func (m *mockQuerier) Update(ctx context.Context, arg UpdateParams) (Template, error) {
	args := m.Called(ctx, arg)
	row, _ := args.Get(0).(Template)
	return row, args.Error(1)
}

func (m *mockQuerier) Touch(ctx context.Context, id uuid.UUID) (Template, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(Template)
	return row, args.Error(1)
}

func (m *mockQuerier) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockQuerier) GetByID(ctx context.Context, id uuid.UUID) (Template, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(Template)
	return row, args.Error(1)
}

func (m *mockQuerier) List(ctx context.Context) ([]Template, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]Template)
	return rows, args.Error(1)
}

func (m *mockQuerier) CreateQuestion(ctx context.Context, arg CreateQuestionParams) (TemplateQuestion, error) {
	args := m.Called(ctx, arg)
	row, _ := args.Get(0).(TemplateQuestion)
	return row, args.Error(1)
}

func (m *mockQuerier) UpdateQuestion(ctx context.Context, arg UpdateQuestionParams) (TemplateQuestion, error) {
	args := m.Called(ctx, arg)
	row, _ := args.Get(0).(TemplateQuestion)
	return row, args.Error(1)
}

func (m *mockQuerier) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockQuerier) CompactQuestionOrder(ctx context.Context, templateID uuid.UUID) error {
	args := m.Called(ctx, templateID)
	return args.Error(0)
}

func (m *mockQuerier) GetQuestionByID(ctx context.Context, id uuid.UUID) (TemplateQuestion, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(TemplateQuestion)
	return row, args.Error(1)
}

func (m *mockQuerier) ListQuestionsByTemplateID(ctx context.Context, templateID uuid.UUID) ([]TemplateQuestion, error) {
	args := m.Called(ctx, templateID)
	rows, _ := args.Get(0).([]TemplateQuestion)
	return rows, args.Error(1)
}

func newTestService(queries Querier) *Service {
	return &Service{
		logger:    zap.NewNop(),
		queries:   queries,
		tracer:    noop.NewTracerProvider().Tracer("test"),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func TestService_Create(t *testing.T) {
	t.Run("Should reject empty name", func(t *testing.T) {
		queries := &mockQuerier{}
		service := newTestService(queries)

		_, err := service.Create(context.Background(), "   ", "", nil)

		require.Error(t, err)
		require.True(t, errors.Is(err, internal.ErrTemplateNameEmpty))
		queries.AssertNotCalled(t, "CreateWithQuestions")
	})

	t.Run("Should seed a single short text question", func(t *testing.T) {
		queries := &mockQuerier{}
		service := newTestService(queries)

		templateID := uuid.New()
		queries.On("CreateWithQuestions", mock.Anything, mock.Anything, mock.MatchedBy(func(questions []CreateQuestionParams) bool {
			return len(questions) == 1 && questions[0].Type == string(question.QuestionTypeShortText)
		})).Return(Template{ID: templateID, Name: "Go-live readiness", Version: 1}, nil)

		created, err := service.Create(context.Background(), "Go-live readiness", "", nil)

		require.NoError(t, err)
		require.Equal(t, templateID, created.ID)
		queries.AssertExpectations(t)
	})

	t.Run("Should store supplied questions instead of the seed", func(t *testing.T) {
		queries := &mockQuerier{}
		service := newTestService(queries)

		templateID := uuid.New()
		queries.On("CreateWithQuestions", mock.Anything, mock.Anything, mock.MatchedBy(func(questions []CreateQuestionParams) bool {
			return len(questions) == 1 && questions[0].Text == "Rollout date?" && questions[0].Type == string(question.QuestionTypeDate)
		})).Return(Template{ID: templateID, Name: "Go-live readiness", Version: 1}, nil).Once()

		_, err := service.Create(context.Background(), "Go-live readiness", "", []question.Question{
			{Text: "Rollout date?", Type: question.QuestionTypeDate},
		})

		require.NoError(t, err)
		queries.AssertExpectations(t)
	})

	t.Run("Should reject an invalid supplied question before any write", func(t *testing.T) {
		queries := &mockQuerier{}
		service := newTestService(queries)

		_, err := service.Create(context.Background(), "Go-live readiness", "", []question.Question{
			{Text: "Pick one", Type: question.QuestionTypeSingleSelect, Options: []string{"only"}},
		})

		require.Error(t, err)
		require.True(t, errors.Is(err, internal.ErrValidationFailed))
		queries.AssertNotCalled(t, "CreateWithQuestions")
	})

	t.Run("Should write the template and its questions in one call", func(t *testing.T) {
		queries := &mockQuerier{}
		service := newTestService(queries)

		queries.On("CreateWithQuestions", mock.Anything, mock.Anything, mock.Anything).
			Return(Template{ID: uuid.New()}, nil).Once()

		_, err := service.Create(context.Background(), "Go-live readiness", "", []question.Question{
			{Text: "Rollout date?", Type: question.QuestionTypeDate},
			{Text: "Any blockers?", Type: question.QuestionTypeLongText},
		})

		require.NoError(t, err)
		queries.AssertNotCalled(t, "CreateQuestion")
		queries.AssertExpectations(t)
	})

	t.Run("Should strip markup from author text", func(t *testing.T) {
		queries := &mockQuerier{}
		service := newTestService(queries)

		queries.On("CreateWithQuestions", mock.Anything, mock.MatchedBy(func(arg CreateParams) bool {
			return arg.Name == "Readiness check"
		}), mock.Anything).Return(Template{ID: uuid.New(), Name: "Readiness check"}, nil)

		_, err := service.Create(context.Background(), "<b>Readiness</b> <i>check</i>", "", nil)

		require.NoError(t, err)
		queries.AssertExpectations(t)
	})
}

func TestService_AddQuestion(t *testing.T) {
	templateID := uuid.New()

	t.Run("Should store canonical likert options regardless of input", func(t *testing.T) {
		queries := &mockQuerier{}
		service := newTestService(queries)

		queries.On("CreateQuestion", mock.Anything, mock.MatchedBy(func(arg CreateQuestionParams) bool {
			if len(arg.Options) != len(question.CanonicalLikertOptions) {
				return false
			}
			for i, want := range question.CanonicalLikertOptions {
				if arg.Options[i] != want {
					return false
				}
			}
			return true
		})).Return(TemplateQuestion{ID: uuid.New(), TemplateID: templateID, Type: "likert"}, nil)
		queries.On("Touch", mock.Anything, templateID).Return(Template{ID: templateID, Version: 2}, nil)

		_, err := service.AddQuestion(context.Background(), templateID, question.Question{
			Text:    "I feel prepared for the new process",
			Type:    question.QuestionTypeLikert,
			Options: []string{"Yep", "Nope"},
		})

		require.NoError(t, err)
		queries.AssertExpectations(t)
	})

	t.Run("Should reject invalid question before touching the database", func(t *testing.T) {
		queries := &mockQuerier{}
		service := newTestService(queries)

		_, err := service.AddQuestion(context.Background(), templateID, question.Question{
			Text: "Pick one",
			Type: question.QuestionTypeSingleSelect,
			// one option is below the minimum
			Options: []string{"Only"},
		})

		require.Error(t, err)
		require.True(t, errors.Is(err, internal.ErrValidationFailed))
		queries.AssertNotCalled(t, "CreateQuestion")
	})

	t.Run("Should bump template version", func(t *testing.T) {
		queries := &mockQuerier{}
		service := newTestService(queries)

		queries.On("CreateQuestion", mock.Anything, mock.Anything).
			Return(TemplateQuestion{ID: uuid.New(), TemplateID: templateID, Type: "scale"}, nil)
		queries.On("Touch", mock.Anything, templateID).Return(Template{ID: templateID, Version: 2}, nil)

		_, err := service.AddQuestion(context.Background(), templateID, question.Question{
			Text: "How confident are you?",
			Type: question.QuestionTypeScale,
		})

		require.NoError(t, err)
		queries.AssertCalled(t, "Touch", mock.Anything, templateID)
	})
}

func TestService_Duplicate(t *testing.T) {
	sourceID := uuid.New()
	copyID := uuid.New()

	queries := &mockQuerier{}
	service := newTestService(queries)

	sourceQuestions := []TemplateQuestion{
		{ID: uuid.New(), TemplateID: sourceID, Text: "How ready is your team?", Type: "scale", SortOrder: 0},
		{ID: uuid.New(), TemplateID: sourceID, Text: "What worries you?", Type: "long_text", SortOrder: 1},
	}

	queries.On("GetByID", mock.Anything, sourceID).
		Return(Template{ID: sourceID, Name: "Migration readiness", Version: 7}, nil)
	queries.On("ListQuestionsByTemplateID", mock.Anything, sourceID).
		Return(sourceQuestions, nil)
	queries.On("CreateWithQuestions", mock.Anything, mock.MatchedBy(func(arg CreateParams) bool {
		return arg.Name == "Migration readiness (copy)"
	}), mock.MatchedBy(func(questions []CreateQuestionParams) bool {
		return len(questions) == len(sourceQuestions) &&
			questions[0].Text == "How ready is your team?" &&
			questions[1].Text == "What worries you?"
	})).Return(Template{ID: copyID, Name: "Migration readiness (copy)", Version: 1}, nil)

	copied, err := service.Duplicate(context.Background(), sourceID)

	require.NoError(t, err)
	require.Equal(t, copyID, copied.ID)
	require.NotEqual(t, sourceID, copied.ID)
	require.Equal(t, int32(1), copied.Version)
	queries.AssertExpectations(t)
}

func TestService_DeleteQuestion(t *testing.T) {
	templateID := uuid.New()
	questionID := uuid.New()

	queries := &mockQuerier{}
	service := newTestService(queries)

	queries.On("GetQuestionByID", mock.Anything, questionID).
		Return(TemplateQuestion{ID: questionID, TemplateID: templateID}, nil)
	queries.On("DeleteQuestion", mock.Anything, questionID).Return(nil)
	queries.On("CompactQuestionOrder", mock.Anything, templateID).Return(nil)
	queries.On("Touch", mock.Anything, templateID).Return(Template{ID: templateID}, nil)

	err := service.DeleteQuestion(context.Background(), questionID)

	require.NoError(t, err)
	queries.AssertExpectations(t)
}

func TestService_Update(t *testing.T) {
	queries := &mockQuerier{}
	service := newTestService(queries)

	id := uuid.New()
	queries.On("Update", mock.Anything, UpdateParams{
		ID:          id,
		Name:        "Renamed",
		Description: pgtype.Text{String: "New description", Valid: true},
	}).Return(Template{ID: id, Name: "Renamed", Version: 2}, nil)

	updated, err := service.Update(context.Background(), id, "Renamed", "New description")

	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	queries.AssertExpectations(t)
}
