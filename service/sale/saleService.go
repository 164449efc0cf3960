package salesvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"booklib/model"
	bookrepo "booklib/repository/book"
	salerepo "booklib/repository/sale"
	walletrepo "booklib/repository/wallet"
	"booklib/util/database"
)

var (
	ErrBookNotFound     = errors.New("book not found")
	ErrNotPurchasable   = errors.New("book not purchasable")
	ErrInvalidPrice     = errors.New("invalid book price")
	ErrAlreadyPurchased = errors.New("already purchased")

	ErrInsufficientFunds = walletrepo.ErrInsufficientFunds
)

// Notifier delivers best-effort messages after a purchase commits.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, message string)
}

type PurchaseRow = salerepo.PurchaseRow

type Service interface {
	// Purchase debits the wallet and records the one-time sale in a
	// single transaction. The unique (user, book) constraint rejects a
	// duplicate and rolls the debit back with it.
	Purchase(ctx context.Context, userID, bookID int64) (*model.Sale, error)
	MyPurchases(ctx context.Context, userID int64) ([]PurchaseRow, error)
}

type service struct {
	begin database.Beginner
	sr    salerepo.Repo
	br    bookrepo.Repo
	wr    walletrepo.Repo
	n     Notifier
}

func New(begin database.Beginner, sr salerepo.Repo, br bookrepo.Repo, wr walletrepo.Repo, n Notifier) Service {
	return &service{begin: begin, sr: sr, br: br, wr: wr, n: n}
}

func (s *service) Purchase(ctx context.Context, userID, bookID int64) (_ *model.Sale, err error) {
	book, err := s.br.ByID(ctx, nil, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	if book.Kind == model.BookPhysical {
		return nil, ErrNotPurchasable
	}
	if book.Price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPrice
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = s.wr.Debit(ctx, tx, userID, book.Price, model.LedgerPurchase, &bookID, false); err != nil {
		return nil, err
	}

	sale := &model.Sale{UserID: userID, BookID: bookID, Price: book.Price}
	if err = s.sr.Insert(ctx, tx, sale); err != nil {
		if errors.Is(err, salerepo.ErrDuplicateSale) {
			return nil, ErrAlreadyPurchased
		}
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	access := "Your copy is available in your library."
	if book.EbookPath != nil && *book.EbookPath != "" {
		access = "Access it here: " + *book.EbookPath
	}
	s.n.NotifyUser(ctx, userID,
		fmt.Sprintf("Purchase successful! '%s' is yours. %s", book.Title, access))

	return sale, nil
}

func (s *service) MyPurchases(ctx context.Context, userID int64) ([]PurchaseRow, error) {
	return s.sr.ListByUser(ctx, userID)
}
