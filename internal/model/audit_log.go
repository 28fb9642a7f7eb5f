package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is an append-only record of one mutating operation. Rows are
// written inside the transaction of the operation they describe and are
// never updated or deleted afterwards.
type AuditLog struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ActorID    *uint          `json:"actor_id,omitempty" gorm:"index"`
	Action     string         `json:"action" gorm:"type:varchar(120);not null"`
	EntityType string         `json:"entity_type" gorm:"type:varchar(120);not null"`
	EntityID   *string        `json:"entity_id,omitempty" gorm:"type:varchar(120)"`
	Metadata   datatypes.JSON `json:"metadata,omitempty" gorm:"type:json"`
	IPAddress  string         `json:"ip_address,omitempty" gorm:"type:varchar(45)"`
	CreatedAt  time.Time      `json:"created_at"`

	Actor *User `json:"-" gorm:"foreignKey:ActorID"`
}

func (AuditLog) TableName() string { return "audit_log" }
