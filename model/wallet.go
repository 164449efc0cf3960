// model/wallet.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID      int64           `json:"id"`
	UserID  int64           `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

type LedgerType string

const (
	LedgerDeposit  LedgerType = "DEPOSIT"
	LedgerPurchase LedgerType = "PURCHASE"
	LedgerPenalty  LedgerType = "PENALTY"
)

// Signed returns the balance delta this entry type represents.
// Amounts are stored positive; the sign is implied by the type.
func (t LedgerType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == LedgerDeposit {
		return amount
	}
	return amount.Neg()
}

// LedgerEntry is append-only. Entries are never updated or deleted;
// the wallet balance equals the sum of signed entries since creation.
type LedgerEntry struct {
	ID              int64           `json:"id"`
	WalletID        int64           `json:"wallet_id"`
	EntryType       LedgerType      `json:"entry_type"`
	Amount          decimal.Decimal `json:"amount"`
	RelatedEntityID *int64          `json:"related_entity_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
