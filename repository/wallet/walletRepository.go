package walletrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"booklib/model"
	"booklib/util/database"
)

// ErrInsufficientFunds is returned by Debit when the balance guard holds
// the debit back. No mutation happens in that case.
var ErrInsufficientFunds = errors.New("insufficient funds")

type Repo interface {
	// Credit adds amount to the user's wallet and appends a ledger entry,
	// creating the wallet lazily on first use. Runs inside the caller's
	// transaction; the wallet row stays locked until commit.
	Credit(ctx context.Context, q database.DBTX, userID int64, amount decimal.Decimal, entryType model.LedgerType, relatedID *int64) (decimal.Decimal, error)

	// Debit subtracts amount and appends a ledger entry. With
	// allowNegative false the debit fails ErrInsufficientFunds when
	// balance < amount; with allowNegative true it always posts, so a
	// penalty can push the balance below zero.
	Debit(ctx context.Context, q database.DBTX, userID int64, amount decimal.Decimal, entryType model.LedgerType, relatedID *int64, allowNegative bool) (decimal.Decimal, error)

	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
	ListEntries(ctx context.Context, userID int64) ([]model.LedgerEntry, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

// ensureWallet creates the wallet row if absent and returns its id with
// the row locked for the rest of the transaction.
func (r *repo) ensureWallet(ctx context.Context, q database.DBTX, userID int64) (int64, decimal.Decimal, error) {
	const ins = `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`
	if _, err := q.ExecContext(ctx, ins, userID); err != nil {
		return 0, decimal.Zero, err
	}

	const sel = `
		SELECT id, balance
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE`
	var id int64
	var bal decimal.Decimal
	if err := q.QueryRowContext(ctx, sel, userID).Scan(&id, &bal); err != nil {
		return 0, decimal.Zero, err
	}
	return id, bal, nil
}

func (r *repo) Credit(ctx context.Context, q database.DBTX, userID int64, amount decimal.Decimal, entryType model.LedgerType, relatedID *int64) (decimal.Decimal, error) {
	walletID, bal, err := r.ensureWallet(ctx, q, userID)
	if err != nil {
		return decimal.Zero, err
	}

	newBal := bal.Add(amount)
	if err := r.setBalance(ctx, q, walletID, newBal); err != nil {
		return decimal.Zero, err
	}
	if err := r.insertEntry(ctx, q, walletID, entryType, amount, relatedID); err != nil {
		return decimal.Zero, err
	}
	return newBal, nil
}

func (r *repo) Debit(ctx context.Context, q database.DBTX, userID int64, amount decimal.Decimal, entryType model.LedgerType, relatedID *int64, allowNegative bool) (decimal.Decimal, error) {
	walletID, bal, err := r.ensureWallet(ctx, q, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if !allowNegative && bal.LessThan(amount) {
		return decimal.Zero, ErrInsufficientFunds
	}

	newBal := bal.Sub(amount)
	if err := r.setBalance(ctx, q, walletID, newBal); err != nil {
		return decimal.Zero, err
	}
	if err := r.insertEntry(ctx, q, walletID, entryType, amount, relatedID); err != nil {
		return decimal.Zero, err
	}
	return newBal, nil
}

func (r *repo) setBalance(ctx context.Context, q database.DBTX, walletID int64, bal decimal.Decimal) error {
	const query = `UPDATE wallets SET balance = $2 WHERE id = $1`
	_, err := q.ExecContext(ctx, query, walletID, bal)
	return err
}

func (r *repo) insertEntry(ctx context.Context, q database.DBTX, walletID int64, entryType model.LedgerType, amount decimal.Decimal, relatedID *int64) error {
	const query = `
		INSERT INTO wallet_ledger (wallet_id, entry_type, amount, related_entity_id)
		VALUES ($1, $2, $3, $4)`
	_, err := q.ExecContext(ctx, query, walletID, entryType, amount, relatedID)
	return err
}

func (r *repo) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	const q = `SELECT balance FROM wallets WHERE user_id = $1`
	var bal decimal.Decimal
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		// No wallet yet means nothing deposited; report zero.
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return bal, nil
}

func (r *repo) ListEntries(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	const q = `
		SELECT e.id, e.wallet_id, e.entry_type, e.amount, e.related_entity_id, e.created_at
		FROM wallet_ledger e
		JOIN wallets w ON w.id = e.wallet_id
		WHERE w.user_id = $1
		ORDER BY e.created_at DESC, e.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.WalletID, &e.EntryType, &e.Amount, &e.RelatedEntityID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
