package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TransactionTypeDeposit TransactionType = "deposit"
	TransactionTypeSend    TransactionType = "send"
	TransactionTypeReceive TransactionType = "receive"
)

// TransactionStatus indicates settlement state of a ledger entry
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an append-only ledger entry. Never mutated after creation;
// balances are derived from the set of confirmed entries.
type Transaction struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string `gorm:"index;not null" json:"user_id"`
	TokenConfigID string `gorm:"index;not null" json:"token_config_id"`

	Type        TransactionType   `gorm:"not null" json:"type"`
	Amount      decimal.Decimal   `gorm:"type:decimal(30,8);not null" json:"amount"` // token units
	Status      TransactionStatus `gorm:"not null;index" json:"status"`
	Description string            `gorm:"type:text" json:"description"`

	// ReferenceID links back to the row that caused this entry (deposit
	// request, referral earning). Causal only — no FK cascade.
	ReferenceID *string `gorm:"index" json:"reference_id,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
