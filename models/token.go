package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenConfig is admin-managed reference data describing a token the wallet
// can hold. The native token is the one deposit credits are denominated in.
type TokenConfig struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Symbol   string `gorm:"uniqueIndex;not null" json:"symbol"`
	Name     string `gorm:"not null" json:"name"`
	Decimals int    `gorm:"default:8" json:"decimals"`
	IsNative bool   `gorm:"default:false;index" json:"is_native"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Timestamps
}

// TokenPrice is an append-only price observation for a token. The newest row
// per token is the "current" price used when crediting approvals. Written by
// the price sync worker and the admin override endpoint; read-only elsewhere.
type TokenPrice struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	TokenConfigID string `gorm:"index;not null" json:"token_config_id"`

	PriceUSD  decimal.Decimal `gorm:"type:decimal(30,8);not null" json:"price_usd"`
	Source    string          `json:"source"` // e.g. "feed", "admin"
	FetchedAt time.Time       `gorm:"index;not null" json:"fetched_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
