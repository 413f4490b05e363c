package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaderboardEntry ranks users by total confirmed deposit volume. Rows are
// recomputed wholesale by the scheduler; they carry no ledger authority.
type LeaderboardEntry struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string `gorm:"uniqueIndex;not null" json:"user_id"`
	Username string `json:"username"`
	Rank     int    `gorm:"index;not null" json:"rank"`

	TotalDepositedUSD decimal.Decimal `gorm:"type:decimal(30,8);not null" json:"total_deposited_usd"`
	DepositCount      int64           `json:"deposit_count"`

	ComputedAt time.Time `gorm:"not null" json:"computed_at"`
}
