package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralCommissionRate is the fixed share of a referred user's approved
// deposit paid to the referrer.
const ReferralCommissionRate = "0.05"

// ReferralEarning records a one-time commission paid to a referrer when a
// referred user's deposit is approved. Immutable once created.
type ReferralEarning struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ReferrerID     string `gorm:"index;not null" json:"referrer_id"`
	ReferredUserID string `gorm:"index;not null" json:"referred_user_id"`
	DepositID      string `gorm:"index;not null" json:"deposit_id"`

	DepositAmount  decimal.Decimal `gorm:"type:decimal(30,8);not null" json:"deposit_amount"`  // USD-equivalent
	EarningsAmount decimal.Decimal `gorm:"type:decimal(30,8);not null" json:"earnings_amount"` // 5% of deposit

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
