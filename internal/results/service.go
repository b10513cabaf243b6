package results

import (
	"context"

	"changepulse/readiness-backend/internal"
	"changepulse/readiness-backend/internal/assessment"
	"changepulse/readiness-backend/internal/assessment/shared"
	"changepulse/readiness-backend/internal/question"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DimensionScore is one readiness axis with its averaged scale score.
type DimensionScore struct {
	Dimension string  `json:"dimension"`
	Score     float64 `json:"score"`
	Count     int     `json:"count"`
}

// QuestionResult is one question's human-readable outcome.
type QuestionResult struct {
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
	Type       string `json:"type"`
	Answered   bool   `json:"answered"`
	Display    string `json:"display,omitempty"`
}

type Results struct {
	AssessmentID string           `json:"assessmentId"`
	Name         string           `json:"name"`
	Dimensions   []DimensionScore `json:"dimensions"`
	Questions    []QuestionResult `json:"questions"`
}

type AssessmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (assessment.Assessment, error)
}

type Service struct {
	logger      *zap.Logger
	tracer      trace.Tracer
	assessments AssessmentStore
}

func NewService(logger *zap.Logger, assessments AssessmentStore) *Service {
	return &Service{
		logger:      logger,
		tracer:      otel.Tracer("results/service"),
		assessments: assessments,
	}
}

// Aggregate builds the readiness report for a completed assessment. Dimension
// scores come from scale answers only; a question without a dimension label
// contributes under its own text. Unanswered questions are omitted from the
// scoring entirely, never counted as zero.
func (s *Service) Aggregate(ctx context.Context, id uuid.UUID) (Results, error) {
	ctx, span := s.tracer.Start(ctx, "Aggregate")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	current, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return Results{}, err
	}
	if current.Status != assessment.StatusCompleted {
		span.RecordError(internal.ErrAssessmentNotCompleted)
		return Results{}, internal.ErrAssessmentNotCompleted
	}

	questions, err := current.Snapshot()
	if err != nil {
		span.RecordError(err)
		return Results{}, err
	}

	answers, err := current.AnswerMap()
	if err != nil {
		span.RecordError(err)
		return Results{}, err
	}

	report := Results{
		AssessmentID: current.ID.String(),
		Name:         current.Name,
	}

	type accumulator struct {
		sum   float64
		count int
	}
	sums := make(map[string]*accumulator)
	var dimensionOrder []string

	for _, q := range questions {
		codec, err := question.NewAnswerable(q)
		if err != nil {
			span.RecordError(err)
			return Results{}, err
		}

		raw, answered := answers[q.ID.String()]

		result := QuestionResult{
			QuestionID: q.ID.String(),
			Text:       q.Text,
			Type:       string(q.Type),
			Answered:   answered,
		}
		if answered {
			display, err := codec.DisplayValue(raw)
			if err != nil {
				span.RecordError(err)
				return Results{}, err
			}
			result.Display = display
		}
		report.Questions = append(report.Questions, result)

		if q.Type != question.QuestionTypeScale || !answered {
			continue
		}

		decoded, err := codec.DecodeStorage(raw)
		if err != nil {
			span.RecordError(err)
			return Results{}, err
		}
		scaleAnswer, ok := decoded.(shared.ScaleAnswer)
		if !ok {
			continue
		}

		dimension := q.Dimension
		if dimension == "" {
			dimension = q.Text
		}
		if _, seen := sums[dimension]; !seen {
			sums[dimension] = &accumulator{}
			dimensionOrder = append(dimensionOrder, dimension)
		}
		sums[dimension].sum += float64(scaleAnswer.Value)
		sums[dimension].count++
	}

	for _, dimension := range dimensionOrder {
		acc := sums[dimension]
		report.Dimensions = append(report.Dimensions, DimensionScore{
			Dimension: dimension,
			Score:     acc.sum / float64(acc.count),
			Count:     acc.count,
		})
	}

	logger.Debug("aggregated assessment results",
		zap.String("assessment_id", id.String()),
		zap.Int("dimension_count", len(report.Dimensions)))

	return report, nil
}
