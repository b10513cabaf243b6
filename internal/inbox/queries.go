package inbox

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

// ContentType names the kind of entity an inbox message points at.
type ContentType string

const (
	ContentTypeAssessment ContentType = "assessment"
)

type Message struct {
	ID        uuid.UUID
	Type      ContentType
	ContentID uuid.UUID
	Title     string
	CreatedAt pgtype.Timestamptz
}

// Recipient pairs a user with the access token delivered alongside the
// message.
type Recipient struct {
	UserID      uuid.UUID
	AccessToken string
}

type UserMessage struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	MessageID   uuid.UUID
	IsRead      bool
	AccessToken string
}

const createMessage = `-- name: CreateMessage :one
INSERT INTO inbox_messages (type, content_id, title)
VALUES ($1, $2, $3)
RETURNING id, type, content_id, title, created_at
`

type CreateMessageParams struct {
	Type      ContentType
	ContentID uuid.UUID
	Title     string
}

func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error) {
	row := q.db.QueryRow(ctx, createMessage, arg.Type, arg.ContentID, arg.Title)
	var i Message
	err := row.Scan(&i.ID, &i.Type, &i.ContentID, &i.Title, &i.CreatedAt)
	return i, err
}

const createUserInboxBulk = `-- name: CreateUserInboxBulk :many
INSERT INTO user_inbox (user_id, message_id, access_token)
SELECT unnest($1::uuid[]), $2, unnest($3::text[])
RETURNING id, user_id, message_id, is_read, access_token
`

type CreateUserInboxBulkParams struct {
	UserIds      []uuid.UUID
	MessageID    uuid.UUID
	AccessTokens []string
}

func (q *Queries) CreateUserInboxBulk(ctx context.Context, arg CreateUserInboxBulkParams) ([]UserMessage, error) {
	rows, err := q.db.Query(ctx, createUserInboxBulk, arg.UserIds, arg.MessageID, arg.AccessTokens)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []UserMessage
	for rows.Next() {
		var i UserMessage
		if err := rows.Scan(&i.ID, &i.UserID, &i.MessageID, &i.IsRead, &i.AccessToken); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listByUser = `-- name: ListByUser :many
SELECT m.id, m.type, m.content_id, m.title, m.created_at, ui.is_read, ui.access_token
FROM inbox_messages m
JOIN user_inbox ui ON ui.message_id = m.id
WHERE ui.user_id = $1
ORDER BY m.created_at DESC
`

type ListByUserRow struct {
	ID          uuid.UUID
	Type        ContentType
	ContentID   uuid.UUID
	Title       string
	CreatedAt   pgtype.Timestamptz
	IsRead      bool
	AccessToken string
}

func (q *Queries) ListByUser(ctx context.Context, userID uuid.UUID) ([]ListByUserRow, error) {
	rows, err := q.db.Query(ctx, listByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListByUserRow
	for rows.Next() {
		var i ListByUserRow
		if err := rows.Scan(&i.ID, &i.Type, &i.ContentID, &i.Title, &i.CreatedAt, &i.IsRead, &i.AccessToken); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markRead = `-- name: MarkRead :exec
UPDATE user_inbox SET is_read = true WHERE user_id = $1 AND message_id = $2
`

type MarkReadParams struct {
	UserID    uuid.UUID
	MessageID uuid.UUID
}

func (q *Queries) MarkRead(ctx context.Context, arg MarkReadParams) error {
	_, err := q.db.Exec(ctx, markRead, arg.UserID, arg.MessageID)
	return err
}
