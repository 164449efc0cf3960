package walletsvc_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"booklib/model"
	walletrepo "booklib/repository/wallet"
	walletsvc "booklib/service/wallet"
	"booklib/util/database"
)

type fakeTx struct {
	commits   int
	rollbacks int
}

func (t *fakeTx) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, nil
}
func (t *fakeTx) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, nil
}
func (t *fakeTx) QueryRowContext(context.Context, string, ...any) *sql.Row { return nil }
func (t *fakeTx) Commit() error                                            { t.commits++; return nil }
func (t *fakeTx) Rollback() error                                          { t.rollbacks++; return nil }

// memRepo keeps wallet state in memory with the same guard rules as the
// SQL repository, so service behavior can be checked without a database.
type memRepo struct {
	balance decimal.Decimal
	entries []model.LedgerEntry
}

var _ walletrepo.Repo = (*memRepo)(nil)

func (m *memRepo) Credit(ctx context.Context, q database.DBTX, userID int64, amount decimal.Decimal, entryType model.LedgerType, relatedID *int64) (decimal.Decimal, error) {
	m.balance = m.balance.Add(amount)
	m.entries = append(m.entries, model.LedgerEntry{EntryType: entryType, Amount: amount, RelatedEntityID: relatedID})
	return m.balance, nil
}

func (m *memRepo) Debit(ctx context.Context, q database.DBTX, userID int64, amount decimal.Decimal, entryType model.LedgerType, relatedID *int64, allowNegative bool) (decimal.Decimal, error) {
	if !allowNegative && m.balance.LessThan(amount) {
		return decimal.Zero, walletrepo.ErrInsufficientFunds
	}
	m.balance = m.balance.Sub(amount)
	m.entries = append(m.entries, model.LedgerEntry{EntryType: entryType, Amount: amount, RelatedEntityID: relatedID})
	return m.balance, nil
}

func (m *memRepo) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return m.balance, nil
}

func (m *memRepo) ListEntries(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	return m.entries, nil
}

func newSvc(repo walletrepo.Repo, tx *fakeTx) walletsvc.Service {
	begin := func(ctx context.Context) (database.Tx, error) { return tx, nil }
	return walletsvc.New(begin, repo)
}

func TestDeposit_RejectsNonPositive(t *testing.T) {
	s := newSvc(&memRepo{}, &fakeTx{})

	_, err := s.Deposit(context.Background(), 1, decimal.Zero)
	require.ErrorIs(t, err, walletsvc.ErrInvalidAmount)

	_, err = s.Deposit(context.Background(), 1, decimal.RequireFromString("-5"))
	require.ErrorIs(t, err, walletsvc.ErrInvalidAmount)
}

func TestDeposit_CreditsAndCommits(t *testing.T) {
	tx := &fakeTx{}
	repo := &memRepo{}
	s := newSvc(repo, tx)

	bal, err := s.Deposit(context.Background(), 1, decimal.RequireFromString("25.50"))
	require.NoError(t, err)
	require.True(t, bal.Equal(decimal.RequireFromString("25.50")))
	require.Equal(t, 1, tx.commits)
	require.Len(t, repo.entries, 1)
	require.Equal(t, model.LedgerDeposit, repo.entries[0].EntryType)
}

func TestBalance_EmptyWalletIsZero(t *testing.T) {
	s := newSvc(&memRepo{}, &fakeTx{})
	bal, err := s.Balance(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, bal.IsZero())
}

// Balance must always equal the sum of signed ledger entries, whatever
// sequence of deposits, purchases and penalties hits the wallet.
func TestLedger_BalanceMatchesEntries(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		repo := &memRepo{}
		s := newSvc(repo, &fakeTx{})

		ops := rapid.IntRange(1, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			cents := rapid.Int64Range(1, 100_000).Draw(t, "cents")
			amount := decimal.New(cents, -2)

			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				_, err := s.Deposit(ctx, 1, amount)
				require.NoError(t, err)
			case 1:
				// Purchase-style debit: may bounce on the guard.
				if _, err := repo.Debit(ctx, nil, 1, amount, model.LedgerPurchase, nil, false); err != nil {
					require.ErrorIs(t, err, walletsvc.ErrInsufficientFunds)
				}
			case 2:
				// Penalty-style debit always posts.
				_, err := repo.Debit(ctx, nil, 1, amount, model.LedgerPenalty, nil, true)
				require.NoError(t, err)
			}
		}

		entries, err := s.Ledger(ctx, 1)
		require.NoError(t, err)

		sum := decimal.Zero
		for _, e := range entries {
			sum = sum.Add(e.EntryType.Signed(e.Amount))
		}

		bal, err := s.Balance(ctx, 1)
		require.NoError(t, err)
		require.True(t, bal.Equal(sum), "balance %s != entry sum %s", bal, sum)
	})
}
