package template

import (
	"changepulse/readiness-backend/internal/question"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Template is the reusable assessment definition. Version counts content
// revisions; deployed assessments snapshot the questions and never see later
// versions.
type Template struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	Version     int32
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

// TemplateQuestion is a question row owned by a template. SortOrder is the
// contiguous 0-based position within the template.
type TemplateQuestion struct {
	ID          uuid.UUID
	TemplateID  uuid.UUID
	Text        string
	Type        string
	Options     []string
	Required    bool
	HelperText  pgtype.Text
	Placeholder pgtype.Text
	Dimension   pgtype.Text
	SortOrder   int32
}

// ToQuestion converts the row into the snapshot-serializable shape shared
// with assessments.
func (q TemplateQuestion) ToQuestion() question.Question {
	return question.Question{
		ID:          q.ID,
		Text:        q.Text,
		Type:        question.QuestionType(q.Type),
		Options:     q.Options,
		Required:    q.Required,
		HelperText:  q.HelperText.String,
		Placeholder: q.Placeholder.String,
		Dimension:   q.Dimension.String,
	}
}
