package walletsvc

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"booklib/model"
	walletrepo "booklib/repository/wallet"
	"booklib/util/database"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds re-exports the repository sentinel so callers
	// can match it without importing the repo package.
	ErrInsufficientFunds = walletrepo.ErrInsufficientFunds
)

type Service interface {
	// Deposit credits the wallet (created lazily on first deposit) and
	// returns the new balance.
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
	Ledger(ctx context.Context, userID int64) ([]model.LedgerEntry, error)
}

type service struct {
	begin database.Beginner
	r     walletrepo.Repo
}

func New(begin database.Beginner, r walletrepo.Repo) Service {
	return &service{begin: begin, r: r}
}

func (s *service) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (_ decimal.Decimal, err error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	newBal, err := s.r.Credit(ctx, tx, userID, amount, model.LedgerDeposit, nil)
	if err != nil {
		return decimal.Zero, err
	}
	if err = tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	return newBal, nil
}

func (s *service) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.r.Balance(ctx, userID)
}

func (s *service) Ledger(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	return s.r.ListEntries(ctx, userID)
}
