package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone,
	is_active, is_admin, created_at, updated_at`

type InsertUserParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        pgtype.Text
}

func (q *Queries) InsertUser(c context.Context, arg InsertUserParams) (User, error) {
	const query = `INSERT INTO users (email, password_hash, first_name, last_name, phone)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userColumns

	var i User
	err := q.db.QueryRow(
		c,
		query,
		arg.Email,
		arg.PasswordHash,
		arg.FirstName,
		arg.LastName,
		arg.Phone,
	).Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.FirstName,
		&i.LastName,
		&i.Phone,
		&i.IsActive,
		&i.IsAdmin,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) FindUserByEmail(c context.Context, email string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var i User
	err := q.db.QueryRow(c, query, email).Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.FirstName,
		&i.LastName,
		&i.Phone,
		&i.IsActive,
		&i.IsAdmin,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) FindUserById(c context.Context, id int64) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var i User
	err := q.db.QueryRow(c, query, id).Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.FirstName,
		&i.LastName,
		&i.Phone,
		&i.IsActive,
		&i.IsAdmin,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) UpdateUserPassword(c context.Context, id int64, passwordHash string) (int64, error) {
	const query = `UPDATE users
SET password_hash = $2, updated_at = now()
WHERE id = $1`

	tag, err := q.db.Exec(c, query, id, passwordHash)
	return tag.RowsAffected(), err
}

func (q *Queries) InvalidateResetTokens(c context.Context, userId int64) error {
	const query = `UPDATE password_reset_tokens SET used = true WHERE user_id = $1 AND used = false`

	_, err := q.db.Exec(c, query, userId)
	return err
}

type InsertResetTokenParams struct {
	UserID    int64
	Token     string
	ExpiresAt pgtype.Timestamptz
}

func (q *Queries) InsertResetToken(c context.Context, arg InsertResetTokenParams) error {
	const query = `INSERT INTO password_reset_tokens (user_id, token, expires_at)
VALUES ($1, $2, $3)`

	_, err := q.db.Exec(c, query, arg.UserID, arg.Token, arg.ExpiresAt)
	return err
}

type FindResetTokenRow struct {
	PasswordResetToken
	Email string
}

func (q *Queries) FindResetToken(c context.Context, token string) (FindResetTokenRow, error) {
	const query = `SELECT prt.id, prt.user_id, prt.token, prt.expires_at, prt.used, prt.created_at, u.email
FROM password_reset_tokens prt
JOIN users u ON prt.user_id = u.id
WHERE prt.token = $1 AND prt.used = false AND prt.expires_at > now()`

	var i FindResetTokenRow
	err := q.db.QueryRow(c, query, token).Scan(
		&i.ID,
		&i.UserID,
		&i.Token,
		&i.ExpiresAt,
		&i.Used,
		&i.CreatedAt,
		&i.Email,
	)
	return i, err
}

func (q *Queries) MarkResetTokenUsed(c context.Context, token string) (int64, error) {
	const query = `UPDATE password_reset_tokens SET used = true WHERE token = $1`

	tag, err := q.db.Exec(c, query, token)
	return tag.RowsAffected(), err
}
