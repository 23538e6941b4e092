package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the settlement state of a purchase intent.
// CONFIRMED and FAILED are terminal.
type TransactionStatus string

const (
	TransactionInitiated TransactionStatus = "INITIATED"
	TransactionPending   TransactionStatus = "PENDING"
	TransactionConfirmed TransactionStatus = "CONFIRMED"
	TransactionFailed    TransactionStatus = "FAILED"
)

// CanMoveTo reports whether the state machine allows s -> next.
func (s TransactionStatus) CanMoveTo(next TransactionStatus) bool {
	switch s {
	case TransactionInitiated:
		return next == TransactionPending
	case TransactionPending:
		return next == TransactionConfirmed || next == TransactionFailed
	}
	return false
}

type Transaction struct {
	ID              int64             `json:"id"`
	PropertyID      int64             `json:"property_id"`
	BuyerID         int64             `json:"buyer_id"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        Currency          `json:"currency"`
	TransactionHash *string           `json:"transaction_hash"`
	Status          TransactionStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type InitiateInput struct {
	PropertyID int64           `json:"property_id" validate:"gt=0"`
	Amount     decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	Currency   Currency        `json:"currency" validate:"required,oneof=BTC ETH USDC"`
}

// SettlementUpdate is what an external settlement process reports about a
// transaction.
type SettlementUpdate struct {
	TransactionID int64             `json:"transaction_id" validate:"gt=0"`
	Status        TransactionStatus `json:"status" validate:"required,oneof=PENDING CONFIRMED FAILED"`
	Hash          *string           `json:"transaction_hash"`
}
