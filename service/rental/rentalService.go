package rentalsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"booklib/model"
	bookrepo "booklib/repository/book"
	rentalrepo "booklib/repository/rental"
	userrepo "booklib/repository/user"
	walletrepo "booklib/repository/wallet"
	"booklib/util/database"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound   ErrCode = "BOOK_NOT_FOUND"
	ErrRentalNotFound ErrCode = "RENTAL_NOT_FOUND"
	ErrUserNotFound   ErrCode = "USER_NOT_FOUND"
	ErrNotRentable    ErrCode = "BOOK_NOT_RENTABLE"
	ErrUserBanned     ErrCode = "USER_BANNED"
	ErrOutOfStock     ErrCode = "OUT_OF_STOCK"
	ErrAlreadyRenting ErrCode = "ALREADY_RENTING"
	ErrInvalidState   ErrCode = "INVALID_STATE"
	ErrNotOwner       ErrCode = "NOT_OWNER"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const rentalPeriodDays = 14

// dailyPenaltyRate is charged per whole day past the due date.
var dailyPenaltyRate = decimal.RequireFromString("5.00")

// Notifier delivers best-effort messages after a transition commits.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, message string)
	NotifyRole(ctx context.Context, role string, message string)
}

type HistoryRow = rentalrepo.HistoryRow

type Service interface {
	// Request creates a REQUESTED rental. Stock is checked but not
	// reserved; reservation happens at approval.
	Request(ctx context.Context, userID, bookID int64) (*model.Rental, error)

	// Approve reserves a copy and starts the loan clock (librarian/admin).
	Approve(ctx context.Context, rentalID int64) (*model.Rental, error)

	// Reject closes a REQUESTED rental without touching stock.
	Reject(ctx context.Context, rentalID int64) (*model.Rental, error)

	// RequestReturn moves the caller's APPROVED rental to RETURN_PENDING.
	RequestReturn(ctx context.Context, userID, rentalID int64) (*model.Rental, error)

	// ConfirmReturn finalizes a return (librarian/admin): computes the
	// late penalty, debits it, releases stock and marks RETURNED, all in
	// one transaction. Accepts APPROVED (walk-in return) or RETURN_PENDING.
	ConfirmReturn(ctx context.Context, rentalID int64) (*model.Rental, error)

	ListRequests(ctx context.Context) ([]HistoryRow, error)
	MyHistory(ctx context.Context, userID int64) ([]HistoryRow, error)
}

type service struct {
	begin database.Beginner
	r     rentalrepo.Repo
	br    bookrepo.Repo
	ur    userrepo.Repo
	wr    walletrepo.Repo
	n     Notifier
	log   *slog.Logger
	now   func() time.Time
}

func New(begin database.Beginner, r rentalrepo.Repo, br bookrepo.Repo, ur userrepo.Repo, wr walletrepo.Repo, n Notifier, log *slog.Logger) Service {
	return &service{begin: begin, r: r, br: br, ur: ur, wr: wr, n: n, log: log, now: time.Now}
}

func (s *service) Request(ctx context.Context, userID, bookID int64) (_ *model.Rental, err error) {
	user, err := s.ur.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrUserNotFound)
		}
		return nil, err
	}

	book, err := s.br.ByID(ctx, nil, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}

	if book.Kind == model.BookDigital {
		return nil, makeErr(ErrNotRentable)
	}
	if user.Banned {
		return nil, makeErr(ErrUserBanned)
	}
	if book.AvailableCopies <= 0 {
		return nil, makeErr(ErrOutOfStock)
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

	renting, err := s.r.HasApproved(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if renting {
		return nil, makeErr(ErrAlreadyRenting)
	}

	requestedAt := s.now()
	id, err := s.r.Insert(ctx, tx, userID, bookID, requestedAt)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.n.NotifyRole(ctx, model.RoleLibrarian,
		fmt.Sprintf("New borrow request for '%s' from %s.", book.Title, user.Name))

	return &model.Rental{
		ID:            id,
		UserID:        userID,
		BookID:        bookID,
		Status:        model.RentalRequested,
		RequestedAt:   requestedAt,
		PenaltyAmount: decimal.Zero,
	}, nil
}

func (s *service) Approve(ctx context.Context, rentalID int64) (_ *model.Rental, err error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rent, err := s.r.GetForUpdate(ctx, tx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRentalNotFound)
		}
		return nil, err
	}
	if rent.Status != model.RentalRequested {
		return nil, makeErr(ErrInvalidState)
	}

	// Stock may have run out since the request was filed; the approver
	// is expected to reject in that case.
	ok, err := s.br.Reserve(ctx, tx, rent.BookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrOutOfStock)
	}

	approvedAt := s.now()
	dueAt := approvedAt.AddDate(0, 0, rentalPeriodDays)
	if err = s.r.MarkApproved(ctx, tx, rentalID, approvedAt, dueAt); err != nil {
		// The partial unique index on (user_id) WHERE status='APPROVED'
		// keeps the one-active-loan rule under concurrent approvals.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, makeErr(ErrAlreadyRenting)
		}
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.n.NotifyUser(ctx, rent.UserID,
		fmt.Sprintf("Your rental has been approved. Due date: %s.", dueAt.Format("2006-01-02")))

	rent.Status = model.RentalApproved
	rent.ApprovedAt = &approvedAt
	rent.DueAt = &dueAt
	return rent, nil
}

func (s *service) Reject(ctx context.Context, rentalID int64) (_ *model.Rental, err error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rent, err := s.r.GetForUpdate(ctx, tx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRentalNotFound)
		}
		return nil, err
	}
	if rent.Status != model.RentalRequested {
		return nil, makeErr(ErrInvalidState)
	}

	if err = s.r.MarkRejected(ctx, tx, rentalID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.n.NotifyUser(ctx, rent.UserID, "Unfortunately, your rental request has been rejected.")

	rent.Status = model.RentalRejected
	return rent, nil
}

func (s *service) RequestReturn(ctx context.Context, userID, rentalID int64) (_ *model.Rental, err error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rent, err := s.r.GetForUpdate(ctx, tx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRentalNotFound)
		}
		return nil, err
	}
	if rent.UserID != userID {
		return nil, makeErr(ErrNotOwner)
	}
	if rent.Status != model.RentalApproved {
		return nil, makeErr(ErrInvalidState)
	}

	if err = s.r.MarkReturnPending(ctx, tx, rentalID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.n.NotifyRole(ctx, model.RoleLibrarian,
		fmt.Sprintf("Return requested for rental #%d.", rentalID))

	rent.Status = model.RentalReturnPending
	return rent, nil
}

func (s *service) ConfirmReturn(ctx context.Context, rentalID int64) (_ *model.Rental, err error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rent, err := s.r.GetForUpdate(ctx, tx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRentalNotFound)
		}
		return nil, err
	}
	if rent.Status != model.RentalApproved && rent.Status != model.RentalReturnPending {
		return nil, makeErr(ErrInvalidState)
	}

	today := s.now()
	penalty := decimal.Zero
	if rent.DueAt != nil {
		if late := wholeDaysLate(*rent.DueAt, today); late > 0 {
			penalty = dailyPenaltyRate.Mul(decimal.NewFromInt(late))
		}
	}

	if penalty.IsPositive() {
		// Penalties post even past zero; the negative balance is the
		// collections signal. Purchases stay blocked below price.
		if _, err = s.wr.Debit(ctx, tx, rent.UserID, penalty, model.LedgerPenalty, &rentalID, true); err != nil {
			return nil, err
		}
	}

	if err = s.br.Release(ctx, tx, rent.BookID); err != nil {
		return nil, err
	}
	if err = s.r.MarkReturned(ctx, tx, rentalID, today, penalty); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	msg := "Your return has been confirmed."
	if penalty.IsPositive() {
		msg = fmt.Sprintf("Your return has been confirmed. A late penalty of %s was charged.", penalty.StringFixed(2))
	}
	s.n.NotifyUser(ctx, rent.UserID, msg)

	rent.Status = model.RentalReturned
	rent.ReturnedAt = &today
	rent.PenaltyAmount = penalty
	return rent, nil
}

func (s *service) ListRequests(ctx context.Context) ([]HistoryRow, error) {
	return s.r.ListByStatus(ctx, model.RentalRequested)
}

func (s *service) MyHistory(ctx context.Context, userID int64) ([]HistoryRow, error) {
	return s.r.ListByUser(ctx, userID)
}

// wholeDaysLate counts whole calendar days from due to at, never negative.
// Returning on the due date itself is not late.
func wholeDaysLate(due, at time.Time) int64 {
	days := int64(calendarDate(at).Sub(calendarDate(due)) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
