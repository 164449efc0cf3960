package rentalrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"booklib/model"
	"booklib/util/database"
)

// HistoryRow joins the rental with its book title for listings.
type HistoryRow struct {
	RentalID      int64           `json:"rental_id"`
	BookID        int64           `json:"book_id"`
	BookTitle     string          `json:"book_title"`
	Status        string          `json:"status"`
	RequestedAt   time.Time       `json:"requested_at"`
	DueAt         *time.Time      `json:"due_at,omitempty"`
	ReturnedAt    *time.Time      `json:"returned_at,omitempty"`
	PenaltyAmount decimal.Decimal `json:"penalty_amount"`
}

type Repo interface {
	Insert(ctx context.Context, q database.DBTX, userID, bookID int64, requestedAt time.Time) (int64, error)

	// GetForUpdate locks the rental row for the span of the transaction.
	GetForUpdate(ctx context.Context, q database.DBTX, rentalID int64) (*model.Rental, error)

	// HasApproved reports whether the user currently holds an APPROVED rental.
	HasApproved(ctx context.Context, q database.DBTX, userID int64) (bool, error)

	MarkApproved(ctx context.Context, q database.DBTX, rentalID int64, approvedAt, dueAt time.Time) error
	MarkRejected(ctx context.Context, q database.DBTX, rentalID int64) error
	MarkReturnPending(ctx context.Context, q database.DBTX, rentalID int64) error
	MarkReturned(ctx context.Context, q database.DBTX, rentalID int64, returnedAt time.Time, penalty decimal.Decimal) error

	ListByStatus(ctx context.Context, status model.RentalStatus) ([]HistoryRow, error)
	ListByUser(ctx context.Context, userID int64) ([]HistoryRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, q database.DBTX, userID, bookID int64, requestedAt time.Time) (int64, error) {
	const query = `
		INSERT INTO rentals (user_id, book_id, status, requested_at)
		VALUES ($1, $2, 'REQUESTED', $3)
		RETURNING id`
	var id int64
	if err := q.QueryRowContext(ctx, query, userID, bookID, requestedAt).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) GetForUpdate(ctx context.Context, q database.DBTX, rentalID int64) (*model.Rental, error) {
	const query = `
		SELECT id, user_id, book_id, status, requested_at, approved_at, due_at, returned_at, penalty_amount
		FROM rentals
		WHERE id = $1
		FOR UPDATE`
	rent := &model.Rental{}
	err := q.QueryRowContext(ctx, query, rentalID).Scan(
		&rent.ID, &rent.UserID, &rent.BookID, &rent.Status,
		&rent.RequestedAt, &rent.ApprovedAt, &rent.DueAt, &rent.ReturnedAt,
		&rent.PenaltyAmount,
	)
	if err != nil {
		return nil, err
	}
	return rent, nil
}

func (r *repo) HasApproved(ctx context.Context, q database.DBTX, userID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM rentals
			WHERE user_id = $1 AND status = 'APPROVED'
		)`
	var exists bool
	if err := q.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *repo) MarkApproved(ctx context.Context, q database.DBTX, rentalID int64, approvedAt, dueAt time.Time) error {
	const query = `
		UPDATE rentals
		SET status = 'APPROVED',
			approved_at = $2,
			due_at = $3
		WHERE id = $1`
	_, err := q.ExecContext(ctx, query, rentalID, approvedAt, dueAt)
	return err
}

func (r *repo) MarkRejected(ctx context.Context, q database.DBTX, rentalID int64) error {
	const query = `
		UPDATE rentals
		SET status = 'REJECTED'
		WHERE id = $1`
	_, err := q.ExecContext(ctx, query, rentalID)
	return err
}

func (r *repo) MarkReturnPending(ctx context.Context, q database.DBTX, rentalID int64) error {
	const query = `
		UPDATE rentals
		SET status = 'RETURN_PENDING'
		WHERE id = $1`
	_, err := q.ExecContext(ctx, query, rentalID)
	return err
}

func (r *repo) MarkReturned(ctx context.Context, q database.DBTX, rentalID int64, returnedAt time.Time, penalty decimal.Decimal) error {
	const query = `
		UPDATE rentals
		SET status = 'RETURNED',
			returned_at = $2,
			penalty_amount = $3
		WHERE id = $1`
	_, err := q.ExecContext(ctx, query, rentalID, returnedAt, penalty)
	return err
}

const historySelect = `
	SELECT
		r.id             AS rental_id,
		r.book_id        AS book_id,
		b.title          AS book_title,
		r.status         AS status,
		r.requested_at   AS requested_at,
		r.due_at         AS due_at,
		r.returned_at    AS returned_at,
		r.penalty_amount AS penalty_amount
	FROM rentals r
	JOIN books b ON b.id = r.book_id`

func (r *repo) ListByStatus(ctx context.Context, status model.RentalStatus) ([]HistoryRow, error) {
	const q = historySelect + `
	WHERE r.status = $1
	ORDER BY r.requested_at ASC, r.id ASC`
	return r.queryHistory(ctx, q, string(status))
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]HistoryRow, error) {
	const q = historySelect + `
	WHERE r.user_id = $1
	ORDER BY r.requested_at DESC, r.id DESC`
	return r.queryHistory(ctx, q, userID)
}

func (r *repo) queryHistory(ctx context.Context, query string, arg any) ([]HistoryRow, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(
			&h.RentalID, &h.BookID, &h.BookTitle, &h.Status,
			&h.RequestedAt, &h.DueAt, &h.ReturnedAt, &h.PenaltyAmount,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
