package bookrepo

import (
	"context"
	"database/sql"

	"booklib/model"
	"booklib/util/database"
)

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context) ([]model.Book, error)
	ByID(ctx context.Context, q database.DBTX, id int64) (*model.Book, error)
	AddCopies(ctx context.Context, bookID int64, n int) (bool, error)

	// Reserve decrements available_copies by one. The guarded UPDATE is
	// atomic per book row: two concurrent reserves of the last copy
	// cannot both report true.
	Reserve(ctx context.Context, q database.DBTX, bookID int64) (bool, error)

	// Release increments available_copies, clamped at total_copies.
	Release(ctx context.Context, q database.DBTX, bookID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const bookColumns = `id, title, author, kind, price, ebook_path, total_copies, available_copies, created_at`

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, author, kind, price, ebook_path, total_copies, available_copies)
		VALUES ($1,$2,$3,$4,$5,$6,$6)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.Kind, b.Price, b.EbookPath, b.TotalCopies,
	).Scan(&b.ID, &b.CreatedAt)
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	const q = `
		SELECT ` + bookColumns + `
		FROM books
		ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := scanBook(rows.Scan, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, q database.DBTX, id int64) (*model.Book, error) {
	if q == nil {
		q = r.db
	}
	const query = `
		SELECT ` + bookColumns + `
		FROM books
		WHERE id = $1`
	var b model.Book
	if err := scanBook(q.QueryRowContext(ctx, query, id).Scan, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) AddCopies(ctx context.Context, bookID int64, n int) (bool, error) {
	const q = `
		UPDATE books
		SET total_copies = total_copies + $2,
			available_copies = available_copies + $2
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, bookID, n)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) Reserve(ctx context.Context, q database.DBTX, bookID int64) (bool, error) {
	// Guard: only decrement while a copy is available.
	const query = `
		UPDATE books
		SET available_copies = available_copies - 1
		WHERE id = $1
		AND available_copies > 0`
	res, err := q.ExecContext(ctx, query, bookID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) Release(ctx context.Context, q database.DBTX, bookID int64) error {
	// Clamp at total_copies; a correct caller never hits the clamp.
	const query = `
		UPDATE books
		SET available_copies = LEAST(available_copies + 1, total_copies)
		WHERE id = $1`
	_, err := q.ExecContext(ctx, query, bookID)
	return err
}

func scanBook(scan func(dest ...any) error, b *model.Book) error {
	return scan(
		&b.ID, &b.Title, &b.Author, &b.Kind, &b.Price, &b.EbookPath,
		&b.TotalCopies, &b.AvailableCopies, &b.CreatedAt,
	)
}
