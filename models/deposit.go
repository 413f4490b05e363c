package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositStatus indicates where a deposit request sits in its lifecycle
type DepositStatus string

const (
	DepositStatusPending  DepositStatus = "pending"
	DepositStatusApproved DepositStatus = "approved"
	DepositStatusRejected DepositStatus = "rejected"
)

// DepositRequest is a user-submitted claim of having sent funds, pending
// manual admin verification. Status only ever moves pending → approved or
// pending → rejected; approved/rejected are terminal. Rows are never deleted.
type DepositRequest struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string `gorm:"index;not null" json:"user_id"`
	TokenConfigID string `gorm:"index;not null" json:"token_config_id"`

	Amount          decimal.Decimal `gorm:"type:decimal(30,8);not null" json:"amount"` // USD-equivalent
	TransactionHash string          `gorm:"not null" json:"transaction_hash"`          // external reference, not verified on-chain
	PaymentMethod   string          `json:"payment_method"`
	ScreenshotURL   string          `gorm:"type:text" json:"screenshot_url,omitempty"`

	Status     DepositStatus `gorm:"not null;default:'pending';index" json:"status"`
	AdminNotes string        `gorm:"type:text" json:"admin_notes"` // written exactly once, on transition
	ReviewedBy *string       `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time    `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
