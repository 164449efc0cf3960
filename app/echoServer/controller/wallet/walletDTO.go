package wallet

import "github.com/shopspring/decimal"

type DepositReq struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}
