package book

import "github.com/shopspring/decimal"

type CreateBookReq struct {
	Title       string          `json:"title" validate:"required"`
	Author      string          `json:"author" validate:"required"`
	Kind        string          `json:"kind" validate:"required,oneof=PHYSICAL DIGITAL HYBRID"`
	Price       decimal.Decimal `json:"price"`
	EbookPath   *string         `json:"ebook_path,omitempty"`
	TotalCopies int             `json:"total_copies" validate:"gte=0"`
}

type AddCopiesReq struct {
	Count int `json:"count" validate:"required,gt=0"`
}
