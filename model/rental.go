// model/rental.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalRequested     RentalStatus = "REQUESTED"
	RentalApproved      RentalStatus = "APPROVED"
	RentalReturnPending RentalStatus = "RETURN_PENDING"
	RentalReturned      RentalStatus = "RETURNED"
	RentalRejected      RentalStatus = "REJECTED"
)

// Rental is one borrow lifecycle for a (user, physical book) pair.
// ApprovedAt/DueAt are set on approval, not at request time.
// Rows are never deleted; REJECTED and RETURNED are terminal.
type Rental struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	BookID        int64           `json:"book_id"`
	Status        RentalStatus    `json:"status"`
	RequestedAt   time.Time       `json:"requested_at"`
	ApprovedAt    *time.Time      `json:"approved_at,omitempty"`
	DueAt         *time.Time      `json:"due_at,omitempty"`
	ReturnedAt    *time.Time      `json:"returned_at,omitempty"`
	PenaltyAmount decimal.Decimal `json:"penalty_amount"`
}
