package salerepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"booklib/model"
	"booklib/util/database"
)

// ErrDuplicateSale maps the unique (user_id, book_id) violation. The
// constraint, not a prior existence check, is what makes the guard hold
// under concurrent duplicate purchases.
var ErrDuplicateSale = errors.New("sale already exists")

// PurchaseRow joins a sale with its book for listings.
type PurchaseRow struct {
	SaleID    int64           `json:"sale_id"`
	BookID    int64           `json:"book_id"`
	BookTitle string          `json:"book_title"`
	EbookPath *string         `json:"ebook_path,omitempty"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

type Repo interface {
	Insert(ctx context.Context, q database.DBTX, sale *model.Sale) error
	ListByUser(ctx context.Context, userID int64) ([]PurchaseRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, q database.DBTX, sale *model.Sale) error {
	const query = `
		INSERT INTO book_sales (user_id, book_id, price)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := q.QueryRowContext(ctx, query, sale.UserID, sale.BookID, sale.Price).
		Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateSale
		}
		return err
	}
	return nil
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]PurchaseRow, error) {
	const q = `
		SELECT s.id, s.book_id, b.title, b.ebook_path, s.price, s.created_at
		FROM book_sales s
		JOIN books b ON b.id = s.book_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC, s.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PurchaseRow
	for rows.Next() {
		var p PurchaseRow
		if err := rows.Scan(&p.SaleID, &p.BookID, &p.BookTitle, &p.EbookPath, &p.Price, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
