// model/book.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookKind string

const (
	BookPhysical BookKind = "PHYSICAL"
	BookDigital  BookKind = "DIGITAL"
	BookHybrid   BookKind = "HYBRID"
)

func (k BookKind) Valid() bool {
	switch k {
	case BookPhysical, BookDigital, BookHybrid:
		return true
	}
	return false
}

// Book is the catalog record. Stock counters are mutated only through
// the reserve/release statements in the book repository; everywhere else
// they are read-only.
type Book struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	Kind            BookKind        `json:"kind"`
	Price           decimal.Decimal `json:"price"`
	EbookPath       *string         `json:"ebook_path,omitempty"`
	TotalCopies     int             `json:"total_copies"`
	AvailableCopies int             `json:"available_copies"`
	CreatedAt       time.Time       `json:"created_at"`
}
