package models

import "time"

// NewsArticle is an admin-authored article surfaced on the news feed.
type NewsArticle struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	Title     string `gorm:"not null" json:"title"`
	Slug      string `gorm:"uniqueIndex;not null" json:"slug"`
	Excerpt   string `gorm:"type:text" json:"excerpt"`
	Body      string `gorm:"type:text" json:"body"`
	CoverURL  string `gorm:"type:text" json:"cover_url"`
	Published bool   `gorm:"default:false;index" json:"published"`

	PublishedAt *time.Time `json:"published_at,omitempty"`

	Timestamps
}
