package template

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
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

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const createTemplate = `-- name: Create :one
INSERT INTO templates (name, description)
VALUES ($1, $2)
RETURNING id, name, description, version, created_at, updated_at
`

type CreateParams struct {
	Name        string
	Description pgtype.Text
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (Template, error) {
	row := q.db.QueryRow(ctx, createTemplate, arg.Name, arg.Description)
	var i Template
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Version, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

// CreateWithQuestions inserts a template and its questions in a single
// transaction, so a failed question insert never leaves a half-written
// template behind. TemplateID on the question params is filled in from the
// inserted row.
func (q *Queries) CreateWithQuestions(ctx context.Context, arg CreateParams, questions []CreateQuestionParams) (Template, error) {
	tx, err := q.db.Begin(ctx)
	if err != nil {
		return Template{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	qtx := q.WithTx(tx)

	created, err := qtx.Create(ctx, arg)
	if err != nil {
		return Template{}, err
	}

	for _, questionArg := range questions {
		questionArg.TemplateID = created.ID
		if _, err := qtx.CreateQuestion(ctx, questionArg); err != nil {
			return Template{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Template{}, err
	}

	return created, nil
}

const updateTemplate = `-- name: Update :one
UPDATE templates
SET name = $2, description = $3, version = version + 1, updated_at = now()
WHERE id = $1
RETURNING id, name, description, version, created_at, updated_at
`

type UpdateParams struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
}

func (q *Queries) Update(ctx context.Context, arg UpdateParams) (Template, error) {
	row := q.db.QueryRow(ctx, updateTemplate, arg.ID, arg.Name, arg.Description)
	var i Template
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Version, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const touchTemplate = `-- name: Touch :one
UPDATE templates
SET version = version + 1, updated_at = now()
WHERE id = $1
RETURNING id, name, description, version, created_at, updated_at
`

func (q *Queries) Touch(ctx context.Context, id uuid.UUID) (Template, error) {
	row := q.db.QueryRow(ctx, touchTemplate, id)
	var i Template
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Version, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const deleteTemplate = `-- name: Delete :exec
DELETE FROM templates WHERE id = $1
`

func (q *Queries) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteTemplate, id)
	return err
}

const getTemplateByID = `-- name: GetByID :one
SELECT id, name, description, version, created_at, updated_at
FROM templates
WHERE id = $1
`

func (q *Queries) GetByID(ctx context.Context, id uuid.UUID) (Template, error) {
	row := q.db.QueryRow(ctx, getTemplateByID, id)
	var i Template
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Version, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const listTemplates = `-- name: List :many
SELECT id, name, description, version, created_at, updated_at
FROM templates
ORDER BY updated_at DESC
`

func (q *Queries) List(ctx context.Context) ([]Template, error) {
	rows, err := q.db.Query(ctx, listTemplates)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Template
	for rows.Next() {
		var i Template
		if err := rows.Scan(&i.ID, &i.Name, &i.Description, &i.Version, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createQuestion = `-- name: CreateQuestion :one
INSERT INTO template_questions (template_id, text, type, options, required, helper_text, placeholder, dimension, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
    (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM template_questions WHERE template_id = $1))
RETURNING id, template_id, text, type, options, required, helper_text, placeholder, dimension, sort_order
`

type CreateQuestionParams struct {
	TemplateID  uuid.UUID
	Text        string
	Type        string
	Options     []string
	Required    bool
	HelperText  pgtype.Text
	Placeholder pgtype.Text
	Dimension   pgtype.Text
}

func (q *Queries) CreateQuestion(ctx context.Context, arg CreateQuestionParams) (TemplateQuestion, error) {
	row := q.db.QueryRow(ctx, createQuestion,
		arg.TemplateID,
		arg.Text,
		arg.Type,
		arg.Options,
		arg.Required,
		arg.HelperText,
		arg.Placeholder,
		arg.Dimension,
	)
	var i TemplateQuestion
	err := row.Scan(&i.ID, &i.TemplateID, &i.Text, &i.Type, &i.Options, &i.Required, &i.HelperText, &i.Placeholder, &i.Dimension, &i.SortOrder)
	return i, err
}

const updateQuestion = `-- name: UpdateQuestion :one
UPDATE template_questions
SET text = $2, type = $3, options = $4, required = $5, helper_text = $6, placeholder = $7, dimension = $8
WHERE id = $1
RETURNING id, template_id, text, type, options, required, helper_text, placeholder, dimension, sort_order
`

type UpdateQuestionParams struct {
	ID          uuid.UUID
	Text        string
	Type        string
	Options     []string
	Required    bool
	HelperText  pgtype.Text
	Placeholder pgtype.Text
	Dimension   pgtype.Text
}

func (q *Queries) UpdateQuestion(ctx context.Context, arg UpdateQuestionParams) (TemplateQuestion, error) {
	row := q.db.QueryRow(ctx, updateQuestion,
		arg.ID,
		arg.Text,
		arg.Type,
		arg.Options,
		arg.Required,
		arg.HelperText,
		arg.Placeholder,
		arg.Dimension,
	)
	var i TemplateQuestion
	err := row.Scan(&i.ID, &i.TemplateID, &i.Text, &i.Type, &i.Options, &i.Required, &i.HelperText, &i.Placeholder, &i.Dimension, &i.SortOrder)
	return i, err
}

const deleteQuestion = `-- name: DeleteQuestion :exec
DELETE FROM template_questions WHERE id = $1
`

func (q *Queries) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteQuestion, id)
	return err
}

const compactQuestionOrder = `-- name: CompactQuestionOrder :exec
UPDATE template_questions tq
SET sort_order = ranked.new_order
FROM (
    SELECT id, ROW_NUMBER() OVER (ORDER BY sort_order) - 1 AS new_order
    FROM template_questions
    WHERE template_id = $1
) ranked
WHERE tq.id = ranked.id
`

// CompactQuestionOrder resequences sort_order to a contiguous 0-based run
// after a delete.
func (q *Queries) CompactQuestionOrder(ctx context.Context, templateID uuid.UUID) error {
	_, err := q.db.Exec(ctx, compactQuestionOrder, templateID)
	return err
}

const getQuestionByID = `-- name: GetQuestionByID :one
SELECT id, template_id, text, type, options, required, helper_text, placeholder, dimension, sort_order
FROM template_questions
WHERE id = $1
`

func (q *Queries) GetQuestionByID(ctx context.Context, id uuid.UUID) (TemplateQuestion, error) {
	row := q.db.QueryRow(ctx, getQuestionByID, id)
	var i TemplateQuestion
	err := row.Scan(&i.ID, &i.TemplateID, &i.Text, &i.Type, &i.Options, &i.Required, &i.HelperText, &i.Placeholder, &i.Dimension, &i.SortOrder)
	return i, err
}

const listQuestionsByTemplateID = `-- name: ListQuestionsByTemplateID :many
SELECT id, template_id, text, type, options, required, helper_text, placeholder, dimension, sort_order
FROM template_questions
WHERE template_id = $1
ORDER BY sort_order
`

func (q *Queries) ListQuestionsByTemplateID(ctx context.Context, templateID uuid.UUID) ([]TemplateQuestion, error) {
	rows, err := q.db.Query(ctx, listQuestionsByTemplateID, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TemplateQuestion
	for rows.Next() {
		var i TemplateQuestion
		if err := rows.Scan(&i.ID, &i.TemplateID, &i.Text, &i.Type, &i.Options, &i.Required, &i.HelperText, &i.Placeholder, &i.Dimension, &i.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
