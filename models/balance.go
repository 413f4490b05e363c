package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserBalance holds the current projected balance for one (user, token)
// pair. Mutated only by the crediting side effect of a deposit approval or
// referral accrual; it must always equal the sum of confirmed credit
// transactions minus confirmed debits for that user/token.
type UserBalance struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string `gorm:"uniqueIndex:idx_user_token;not null" json:"user_id"`
	TokenConfigID string `gorm:"uniqueIndex:idx_user_token;not null" json:"token_config_id"`

	Balance  decimal.Decimal `gorm:"type:decimal(30,8);not null" json:"balance"`   // token units
	USDValue decimal.Decimal `gorm:"type:decimal(30,8);not null" json:"usd_value"` // USD-equivalent

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
