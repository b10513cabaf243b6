package results

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet   = "Summary"
	responsesSheet = "Responses"
)

// Export renders the aggregated report as an xlsx workbook with a dimension
// summary sheet and a per-question responses sheet.
func (s *Service) Export(ctx context.Context, id uuid.UUID) (*excelize.File, error) {
	ctx, span := s.tracer.Start(ctx, "Export")
	defer span.End()

	report, err := s.Aggregate(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	file := excelize.NewFile()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	summaryHeader := []any{"Dimension", "Score", "Questions"}
	if err := file.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to write summary header: %w", err)
	}
	for i, dimension := range report.Dimensions {
		row := []any{dimension.Dimension, dimension.Score, dimension.Count}
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow(summarySheet, cell, &row); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	if _, err := file.NewSheet(responsesSheet); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create responses sheet: %w", err)
	}

	responsesHeader := []any{"Question", "Type", "Answered", "Answer"}
	if err := file.SetSheetRow(responsesSheet, "A1", &responsesHeader); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to write responses header: %w", err)
	}
	for i, result := range report.Questions {
		row := []any{result.Text, result.Type, result.Answered, result.Display}
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow(responsesSheet, cell, &row); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to write responses row: %w", err)
		}
	}

	return file, nil
}
