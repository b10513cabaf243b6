package assessment

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const assessmentColumns = `id, template_id, project_id, name, status, template_version, content_snapshot, recipients, answers, scheduled_at, deployed_at, completed_at, created_at, updated_at`

func scanAssessment(row pgx.Row) (Assessment, error) {
	var i Assessment
	err := row.Scan(
		&i.ID,
		&i.TemplateID,
		&i.ProjectID,
		&i.Name,
		&i.Status,
		&i.TemplateVersion,
		&i.ContentSnapshot,
		&i.Recipients,
		&i.Answers,
		&i.ScheduledAt,
		&i.DeployedAt,
		&i.CompletedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createAssessment = `-- name: Create :one
INSERT INTO assessments (template_id, project_id, name, status, template_version, content_snapshot)
VALUES ($1, $2, $3, 'draft', $4, $5)
RETURNING ` + assessmentColumns

type CreateParams struct {
	TemplateID      uuid.UUID
	ProjectID       pgtype.UUID
	Name            string
	TemplateVersion int32
	ContentSnapshot []byte
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (Assessment, error) {
	row := q.db.QueryRow(ctx, createAssessment, arg.TemplateID, arg.ProjectID, arg.Name, arg.TemplateVersion, arg.ContentSnapshot)
	return scanAssessment(row)
}

const getAssessmentByID = `-- name: GetByID :one
SELECT ` + assessmentColumns + `
FROM assessments
WHERE id = $1
`

func (q *Queries) GetByID(ctx context.Context, id uuid.UUID) (Assessment, error) {
	row := q.db.QueryRow(ctx, getAssessmentByID, id)
	return scanAssessment(row)
}

const listAssessments = `-- name: List :many
SELECT ` + assessmentColumns + `
FROM assessments
ORDER BY created_at DESC
`

func (q *Queries) List(ctx context.Context) ([]Assessment, error) {
	rows, err := q.db.Query(ctx, listAssessments)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssessments(rows)
}

const listByProject = `-- name: ListByProject :many
SELECT ` + assessmentColumns + `
FROM assessments
WHERE project_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListByProject(ctx context.Context, projectID pgtype.UUID) ([]Assessment, error) {
	rows, err := q.db.Query(ctx, listByProject, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssessments(rows)
}

const listByRecipient = `-- name: ListByRecipient :many
SELECT ` + assessmentColumns + `
FROM assessments
WHERE status <> 'draft' AND $1 = ANY(recipients)
ORDER BY deployed_at DESC
`

func (q *Queries) ListByRecipient(ctx context.Context, userID uuid.UUID) ([]Assessment, error) {
	rows, err := q.db.Query(ctx, listByRecipient, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssessments(rows)
}

func collectAssessments(rows pgx.Rows) ([]Assessment, error) {
	var items []Assessment
	for rows.Next() {
		i, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setTargeting = `-- name: SetTargeting :one
UPDATE assessments
SET recipients = $2, scheduled_at = $3, updated_at = now()
WHERE id = $1
RETURNING ` + assessmentColumns

type SetTargetingParams struct {
	ID          uuid.UUID
	Recipients  []uuid.UUID
	ScheduledAt pgtype.Timestamptz
}

func (q *Queries) SetTargeting(ctx context.Context, arg SetTargetingParams) (Assessment, error) {
	row := q.db.QueryRow(ctx, setTargeting, arg.ID, arg.Recipients, arg.ScheduledAt)
	return scanAssessment(row)
}

const markDeployed = `-- name: MarkDeployed :one
UPDATE assessments
SET status = 'deployed', deployed_at = now(), updated_at = now()
WHERE id = $1
RETURNING ` + assessmentColumns

func (q *Queries) MarkDeployed(ctx context.Context, id uuid.UUID) (Assessment, error) {
	row := q.db.QueryRow(ctx, markDeployed, id)
	return scanAssessment(row)
}

const saveAnswers = `-- name: SaveAnswers :one
UPDATE assessments
SET answers = $2, status = $3, completed_at = $4, updated_at = now()
WHERE id = $1
RETURNING ` + assessmentColumns

type SaveAnswersParams struct {
	ID          uuid.UUID
	Answers     []byte
	Status      Status
	CompletedAt pgtype.Timestamptz
}

// SaveAnswers persists the merged answer map and resulting status in a single
// statement so a submission is atomic.
func (q *Queries) SaveAnswers(ctx context.Context, arg SaveAnswersParams) (Assessment, error) {
	row := q.db.QueryRow(ctx, saveAnswers, arg.ID, arg.Answers, arg.Status, arg.CompletedAt)
	return scanAssessment(row)
}

const deleteAssessment = `-- name: Delete :exec
DELETE FROM assessments WHERE id = $1
`

func (q *Queries) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteAssessment, id)
	return err
}
