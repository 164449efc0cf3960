package notifrepo

import (
	"context"
	"database/sql"

	"booklib/model"
)

type Repo interface {
	Insert(ctx context.Context, userID int64, message string) error
	InsertForRole(ctx context.Context, role string, message string) error
	ListByUser(ctx context.Context, userID int64) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, userID int64, message string) error {
	const q = `
		INSERT INTO notifications (user_id, message)
		VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, q, userID, message)
	return err
}

// InsertForRole fans the message out to every user holding the role.
func (r *repo) InsertForRole(ctx context.Context, role string, message string) error {
	const q = `
		INSERT INTO notifications (user_id, message)
		SELECT id, $2 FROM users WHERE role = $1`
	_, err := r.db.ExecContext(ctx, q, role, message)
	return err
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Notification, error) {
	const q = `
		SELECT id, user_id, message, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *repo) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	// Ownership enforced in the WHERE clause.
	const q = `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}
