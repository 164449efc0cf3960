package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"booklib/model"
	bookrepo "booklib/repository/book"
)

var (
	ErrBadInput = errors.New("bad input")
	ErrNotFound = errors.New("book not found")
)

type Service interface {
	Create(ctx context.Context, b *model.Book) error
	AddCopies(ctx context.Context, bookID int64, n int) error
	List(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type service struct{ r bookrepo.Repo }

func New(r bookrepo.Repo) Service { return &service{r} }

func (s *service) Create(ctx context.Context, b *model.Book) error {
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
		return ErrBadInput
	}
	if !b.Kind.Valid() {
		return ErrBadInput
	}
	if b.Price.LessThan(decimal.Zero) || b.TotalCopies < 0 {
		return ErrBadInput
	}
	// Digital-only titles carry no physical stock.
	if b.Kind == model.BookDigital {
		b.TotalCopies = 0
	}
	b.AvailableCopies = b.TotalCopies
	return s.r.Create(ctx, b)
}

func (s *service) AddCopies(ctx context.Context, bookID int64, n int) error {
	if n <= 0 {
		return ErrBadInput
	}
	ok, err := s.r.AddCopies(ctx, bookID, n)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]model.Book, error) {
	return s.r.List(ctx)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}
