package salesvc_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"booklib/model"
	salerepo "booklib/repository/sale"
	walletrepo "booklib/repository/wallet"
	salesvc "booklib/service/sale"
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

type saleRepoMock struct {
	insertFn     func(ctx context.Context, q database.DBTX, sale *model.Sale) error
	listByUserFn func(ctx context.Context, userID int64) ([]salerepo.PurchaseRow, error)
}

var _ salerepo.Repo = (*saleRepoMock)(nil)

func (m *saleRepoMock) Insert(ctx context.Context, q database.DBTX, sale *model.Sale) error {
	return m.insertFn(ctx, q, sale)
}
func (m *saleRepoMock) ListByUser(ctx context.Context, userID int64) ([]salerepo.PurchaseRow, error) {
	return m.listByUserFn(ctx, userID)
}

type bookRepoMock struct {
	byIDFn func(ctx context.Context, q database.DBTX, id int64) (*model.Book, error)
}

func (m *bookRepoMock) Create(ctx context.Context, b *model.Book) error { return nil }
func (m *bookRepoMock) List(ctx context.Context) ([]model.Book, error)  { return nil, nil }
func (m *bookRepoMock) ByID(ctx context.Context, q database.DBTX, id int64) (*model.Book, error) {
	return m.byIDFn(ctx, q, id)
}
func (m *bookRepoMock) AddCopies(ctx context.Context, bookID int64, n int) (bool, error) {
	return false, nil
}
func (m *bookRepoMock) Reserve(ctx context.Context, q database.DBTX, bookID int64) (bool, error) {
	return false, nil
}
func (m *bookRepoMock) Release(ctx context.Context, q database.DBTX, bookID int64) error { return nil }

type walletRepoMock struct {
	debitFn func(ctx context.Context, q database.DBTX, userID int64, amount decimal.Decimal, entryType model.LedgerType, relatedID *int64, allowNegative bool) (decimal.Decimal, error)
}

func (m *walletRepoMock) Credit(ctx context.Context, q database.DBTX, userID int64, amount decimal.Decimal, entryType model.LedgerType, relatedID *int64) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (m *walletRepoMock) Debit(ctx context.Context, q database.DBTX, userID int64, amount decimal.Decimal, entryType model.LedgerType, relatedID *int64, allowNegative bool) (decimal.Decimal, error) {
	return m.debitFn(ctx, q, userID, amount, entryType, relatedID, allowNegative)
}
func (m *walletRepoMock) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (m *walletRepoMock) ListEntries(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	return nil, nil
}

type notifierMock struct{ msgs []string }

func (n *notifierMock) NotifyUser(ctx context.Context, userID int64, message string) {
	n.msgs = append(n.msgs, message)
}

type fixture struct {
	svc salesvc.Service
	tx  *fakeTx
	sr  *saleRepoMock
	br  *bookRepoMock
	wr  *walletRepoMock
	n   *notifierMock
}

func newFixture() *fixture {
	f := &fixture{
		tx: &fakeTx{},
		sr: &saleRepoMock{},
		br: &bookRepoMock{},
		wr: &walletRepoMock{},
		n:  &notifierMock{},
	}
	begin := func(ctx context.Context) (database.Tx, error) { return f.tx, nil }
	f.svc = salesvc.New(begin, f.sr, f.br, f.wr, f.n)
	return f
}

func digitalBook(id int64, price string) *model.Book {
	path := "/ebooks/dune.epub"
	return &model.Book{
		ID: id, Title: "Dune", Author: "Herbert",
		Kind: model.BookDigital, Price: decimal.RequireFromString(price),
		EbookPath: &path,
	}
}

func TestPurchase_Success(t *testing.T) {
	f := newFixture()
	f.br.byIDFn = func(ctx context.Context, q database.DBTX, id int64) (*model.Book, error) {
		return digitalBook(id, "19.90"), nil
	}
	f.wr.debitFn = func(ctx context.Context, q database.DBTX, userID int64, amount decimal.Decimal, entryType model.LedgerType, relatedID *int64, allowNegative bool) (decimal.Decimal, error) {
		require.True(t, amount.Equal(decimal.RequireFromString("19.90")))
		require.Equal(t, model.LedgerPurchase, entryType)
		require.False(t, allowNegative, "purchases must not overdraw")
		return decimal.Zero, nil
	}
	f.sr.insertFn = func(ctx context.Context, q database.DBTX, sale *model.Sale) error {
		sale.ID = 11
		return nil
	}

	sale, err := f.svc.Purchase(context.Background(), 1, 9)
	require.NoError(t, err)
	require.Equal(t, int64(11), sale.ID)
	require.Equal(t, 1, f.tx.commits)
	require.Len(t, f.n.msgs, 1)
	require.Contains(t, f.n.msgs[0], "/ebooks/dune.epub")
}

func TestPurchase_PhysicalOnlyRejected(t *testing.T) {
	f := newFixture()
	f.br.byIDFn = func(ctx context.Context, q database.DBTX, id int64) (*model.Book, error) {
		return &model.Book{ID: id, Kind: model.BookPhysical, Price: decimal.RequireFromString("10")}, nil
	}

	_, err := f.svc.Purchase(context.Background(), 1, 9)
	require.ErrorIs(t, err, salesvc.ErrNotPurchasable)
}

func TestPurchase_BookNotFound(t *testing.T) {
	f := newFixture()
	f.br.byIDFn = func(ctx context.Context, q database.DBTX, id int64) (*model.Book, error) {
		return nil, sql.ErrNoRows
	}

	_, err := f.svc.Purchase(context.Background(), 1, 9)
	require.ErrorIs(t, err, salesvc.ErrBookNotFound)
}

func TestPurchase_InsufficientFunds(t *testing.T) {
	f := newFixture()
	f.br.byIDFn = func(ctx context.Context, q database.DBTX, id int64) (*model.Book, error) {
		return digitalBook(id, "19.90"), nil
	}
	f.wr.debitFn = func(ctx context.Context, q database.DBTX, userID int64, amount decimal.Decimal, entryType model.LedgerType, relatedID *int64, allowNegative bool) (decimal.Decimal, error) {
		return decimal.Zero, walletrepo.ErrInsufficientFunds
	}
	f.sr.insertFn = func(ctx context.Context, q database.DBTX, sale *model.Sale) error {
		t.Fatal("sale must not be recorded when the debit bounces")
		return nil
	}

	_, err := f.svc.Purchase(context.Background(), 1, 9)
	require.ErrorIs(t, err, salesvc.ErrInsufficientFunds)
	require.Equal(t, 1, f.tx.rollbacks)
	require.Zero(t, f.tx.commits)
	require.Empty(t, f.n.msgs)
}

func TestPurchase_DuplicateRollsBackDebit(t *testing.T) {
	f := newFixture()
	f.br.byIDFn = func(ctx context.Context, q database.DBTX, id int64) (*model.Book, error) {
		return digitalBook(id, "19.90"), nil
	}
	f.wr.debitFn = func(ctx context.Context, q database.DBTX, userID int64, amount decimal.Decimal, entryType model.LedgerType, relatedID *int64, allowNegative bool) (decimal.Decimal, error) {
		return decimal.Zero, nil
	}
	f.sr.insertFn = func(ctx context.Context, q database.DBTX, sale *model.Sale) error {
		return salerepo.ErrDuplicateSale
	}

	_, err := f.svc.Purchase(context.Background(), 1, 9)
	require.ErrorIs(t, err, salesvc.ErrAlreadyPurchased)
	require.Equal(t, 1, f.tx.rollbacks)
	require.Zero(t, f.tx.commits)
}

func TestPurchase_FreeBookRejected(t *testing.T) {
	f := newFixture()
	f.br.byIDFn = func(ctx context.Context, q database.DBTX, id int64) (*model.Book, error) {
		return &model.Book{ID: id, Kind: model.BookDigital, Price: decimal.Zero}, nil
	}

	_, err := f.svc.Purchase(context.Background(), 1, 9)
	require.ErrorIs(t, err, salesvc.ErrInvalidPrice)
}

func TestMyPurchases_PassThrough(t *testing.T) {
	f := newFixture()
	f.sr.listByUserFn = func(ctx context.Context, userID int64) ([]salerepo.PurchaseRow, error) {
		return []salerepo.PurchaseRow{{SaleID: 1, BookTitle: "Dune"}}, nil
	}

	rows, err := f.svc.MyPurchases(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
