package model

import "time"

// Page is a titled document composed of an ordered sequence of blocks.
// Archived pages keep their rows but are read-only until restored.
type Page struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	Title            string     `json:"title" gorm:"type:varchar(300);not null"`
	CreatedByUserID  uint       `json:"created_by_user_id" gorm:"index;not null"`
	LastViewedAt     *time.Time `json:"last_viewed_at,omitempty"`
	LastEditedAt     *time.Time `json:"last_edited_at,omitempty"`
	ArchivedAt       *time.Time `json:"archived_at,omitempty" gorm:"index"`
	ArchivedByUserID *uint      `json:"archived_by_user_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Blocks []Block `json:"blocks,omitempty" gorm:"foreignKey:PageID"`
}

func (Page) TableName() string { return "page" }

// Archived reports whether the page is currently archived.
func (p *Page) Archived() bool { return p.ArchivedAt != nil }
