package models

import "github.com/shopspring/decimal"

// NFTListing is a display-only marketplace entry. The wallet never moves the
// underlying asset; listings are browsed and admin-curated.
type NFTListing struct {
	ID         string          `gorm:"primaryKey;type:uuid" json:"id"`
	Name       string          `gorm:"not null" json:"name"`
	Collection string          `gorm:"index" json:"collection"`
	ImageURL   string          `gorm:"type:text" json:"image_url"`
	PriceUSD   decimal.Decimal `gorm:"type:decimal(30,8)" json:"price_usd"`
	OwnerID    *string         `gorm:"index" json:"owner_id,omitempty"`
	IsActive   bool            `gorm:"default:true;index" json:"is_active"`

	Timestamps
}

// MemeItem is a community meme shown in the memes marketplace tab.
type MemeItem struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	Title    string  `gorm:"not null" json:"title"`
	ImageURL string  `gorm:"type:text;not null" json:"image_url"`
	Upvotes  int64   `gorm:"default:0" json:"upvotes"`
	PostedBy *string `gorm:"index" json:"posted_by,omitempty"`

	Timestamps
}
