package model

import "time"

// AppSetting is a durable key/value cell in the core store. The workspace
// database location is persisted here, which is why the table must stay
// readable through a raw driver connection before any GORM schema exists.
type AppSetting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"type:varchar(120);uniqueIndex;not null"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AppSetting) TableName() string { return "app_setting" }
