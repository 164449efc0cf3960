package booksvc_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"booklib/model"
	bookrepo "booklib/repository/book"
	booksvc "booklib/service/book"
	"booklib/util/database"
)

type repoMock struct {
	createFn    func(ctx context.Context, b *model.Book) error
	addCopiesFn func(ctx context.Context, bookID int64, n int) (bool, error)
	listFn      func(ctx context.Context) ([]model.Book, error)
	byIDFn      func(ctx context.Context, q database.DBTX, id int64) (*model.Book, error)
}

var _ bookrepo.Repo = (*repoMock)(nil)

func (m *repoMock) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *repoMock) List(ctx context.Context) ([]model.Book, error)  { return m.listFn(ctx) }
func (m *repoMock) ByID(ctx context.Context, q database.DBTX, id int64) (*model.Book, error) {
	return m.byIDFn(ctx, q, id)
}
func (m *repoMock) AddCopies(ctx context.Context, bookID int64, n int) (bool, error) {
	return m.addCopiesFn(ctx, bookID, n)
}
func (m *repoMock) Reserve(ctx context.Context, q database.DBTX, bookID int64) (bool, error) {
	return false, nil
}
func (m *repoMock) Release(ctx context.Context, q database.DBTX, bookID int64) error { return nil }

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})
	ctx := context.Background()

	bad := []*model.Book{
		{Title: "", Author: "A", Kind: model.BookPhysical},
		{Title: "T", Author: "", Kind: model.BookPhysical},
		{Title: "T", Author: "A", Kind: "PAPERBACK"},
		{Title: "T", Author: "A", Kind: model.BookPhysical, Price: decimal.RequireFromString("-1")},
		{Title: "T", Author: "A", Kind: model.BookPhysical, TotalCopies: -2},
	}
	for _, b := range bad {
		if err := s.Create(ctx, b); err == nil {
			t.Fatalf("expected validation error for %+v", b)
		}
	}
}

func TestCreate_DigitalCarriesNoStock(t *testing.T) {
	var got *model.Book
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			got = b
			return nil
		},
	}
	s := booksvc.New(m)

	b := &model.Book{
		Title: "Dune", Author: "Herbert",
		Kind: model.BookDigital, Price: decimal.RequireFromString("9.99"),
		TotalCopies: 5,
	}
	if err := s.Create(context.Background(), b); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.TotalCopies != 0 || got.AvailableCopies != 0 {
		t.Fatalf("digital book kept stock: total=%d available=%d", got.TotalCopies, got.AvailableCopies)
	}
}

func TestCreate_AvailableMatchesTotal(t *testing.T) {
	var got *model.Book
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			got = b
			return nil
		},
	}
	s := booksvc.New(m)

	b := &model.Book{Title: "Dune", Author: "Herbert", Kind: model.BookPhysical, TotalCopies: 4}
	if err := s.Create(context.Background(), b); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.AvailableCopies != 4 {
		t.Fatalf("available=%d; want 4", got.AvailableCopies)
	}
}

func TestAddCopies(t *testing.T) {
	m := &repoMock{
		addCopiesFn: func(ctx context.Context, bookID int64, n int) (bool, error) {
			return bookID == 7, nil
		},
	}
	s := booksvc.New(m)
	ctx := context.Background()

	if err := s.AddCopies(ctx, 7, 3); err != nil {
		t.Fatalf("AddCopies: %v", err)
	}
	if err := s.AddCopies(ctx, 8, 3); err != booksvc.ErrNotFound {
		t.Fatalf("got %v; want ErrNotFound", err)
	}
	if err := s.AddCopies(ctx, 7, 0); err != booksvc.ErrBadInput {
		t.Fatalf("got %v; want ErrBadInput", err)
	}
}

func TestDetail_NotFound(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, q database.DBTX, id int64) (*model.Book, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := booksvc.New(m)

	if _, err := s.Detail(context.Background(), 99); err != booksvc.ErrNotFound {
		t.Fatalf("got %v; want ErrNotFound", err)
	}
}
