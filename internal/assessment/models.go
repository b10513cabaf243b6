package assessment

import (
	"encoding/json"
	"fmt"

	"changepulse/readiness-backend/internal/question"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Assessment is a deployed (or deployable) instance of a template. The
// content snapshot is copied from the template at creation and frozen:
// template edits after that point never reach an assessment.
type Assessment struct {
	ID              uuid.UUID
	TemplateID      uuid.UUID
	ProjectID       pgtype.UUID
	Name            string
	Status          Status
	TemplateVersion int32
	ContentSnapshot []byte
	Recipients      []uuid.UUID
	Answers         []byte
	ScheduledAt     pgtype.Timestamptz
	DeployedAt      pgtype.Timestamptz
	CompletedAt     pgtype.Timestamptz
	CreatedAt       pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
}

// Snapshot decodes the frozen question list.
func (a Assessment) Snapshot() ([]question.Question, error) {
	if len(a.ContentSnapshot) == 0 {
		return nil, nil
	}

	var questions []question.Question
	if err := json.Unmarshal(a.ContentSnapshot, &questions); err != nil {
		return nil, fmt.Errorf("decode content snapshot: %w", err)
	}

	return questions, nil
}

// AnswerMap decodes the stored answers keyed by question ID.
func (a Assessment) AnswerMap() (map[string]json.RawMessage, error) {
	answers := make(map[string]json.RawMessage)
	if len(a.Answers) == 0 {
		return answers, nil
	}

	if err := json.Unmarshal(a.Answers, &answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}

	return answers, nil
}
