package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type UpsertChatSessionParams struct {
	SessionID string
	UserID    pgtype.Int8
}

func (q *Queries) UpsertChatSession(c context.Context, arg UpsertChatSessionParams) error {
	const query = `INSERT INTO chat_sessions (session_id, user_id)
VALUES ($1, $2)
ON CONFLICT (session_id) DO NOTHING`

	_, err := q.db.Exec(c, query, arg.SessionID, arg.UserID)
	return err
}

func (q *Queries) FindChatSession(c context.Context, sessionId string) (ChatSession, error) {
	const query = `SELECT id, session_id, user_id, created_at, updated_at
FROM chat_sessions
WHERE session_id = $1`

	var i ChatSession
	err := q.db.QueryRow(c, query, sessionId).Scan(
		&i.ID,
		&i.SessionID,
		&i.UserID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) TouchChatSession(c context.Context, sessionId string) error {
	const query = `UPDATE chat_sessions SET updated_at = now() WHERE session_id = $1`

	_, err := q.db.Exec(c, query, sessionId)
	return err
}

type InsertChatMessageParams struct {
	SessionID string
	Role      string
	Content   string
	Intent    pgtype.Text
	Agent     pgtype.Text
}

func (q *Queries) InsertChatMessage(
	c context.Context,
	arg InsertChatMessageParams,
) (ChatMessage, error) {
	const query = `INSERT INTO chat_messages (session_id, role, content, intent, agent)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, session_id, role, content, intent, agent, created_at`

	var i ChatMessage
	err := q.db.QueryRow(
		c,
		query,
		arg.SessionID,
		arg.Role,
		arg.Content,
		arg.Intent,
		arg.Agent,
	).Scan(
		&i.ID,
		&i.SessionID,
		&i.Role,
		&i.Content,
		&i.Intent,
		&i.Agent,
		&i.CreatedAt,
	)
	return i, err
}

type FindChatMessagesParams struct {
	SessionID string
	Limit     int32
}

func (q *Queries) FindChatMessages(
	c context.Context,
	arg FindChatMessagesParams,
) ([]ChatMessage, error) {
	const query = `SELECT id, session_id, role, content, intent, agent, created_at
FROM chat_messages
WHERE session_id = $1
ORDER BY created_at ASC
LIMIT $2`

	rows, err := q.db.Query(c, query, arg.SessionID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []ChatMessage{}
	for rows.Next() {
		var i ChatMessage
		if err := rows.Scan(
			&i.ID,
			&i.SessionID,
			&i.Role,
			&i.Content,
			&i.Intent,
			&i.Agent,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
