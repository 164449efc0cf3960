// model/sale.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale records a completed digital-copy purchase. At most one row exists
// per (user, book); the unique constraint in the schema is the guard.
type Sale struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	BookID    int64           `json:"book_id"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}
