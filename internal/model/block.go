package model

import (
	"time"

	"gorm.io/datatypes"
)

// Block content types.
const (
	BlockText         = "text"
	BlockHeading      = "heading"
	BlockBulletedList = "bulleted_list"
	BlockCheckboxList = "checkbox_list"
	BlockDivider      = "divider"
	BlockCallout      = "callout"
)

// BlockTypes is the closed set of block types.
var BlockTypes = []string{BlockText, BlockHeading, BlockBulletedList, BlockCheckboxList, BlockDivider, BlockCallout}

// CalloutStyles is the closed style set for callout blocks.
var CalloutStyles = []string{"note", "info", "warn"}

// Block is one typed segment of a page. Position is 1-based and contiguous
// within a page after every save.
type Block struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	PageID          uint           `json:"page_id" gorm:"index;not null"`
	Type            string         `json:"type" gorm:"type:varchar(30);not null"`
	Position        int            `json:"position" gorm:"not null"`
	Content         datatypes.JSON `json:"content" gorm:"type:json"`
	CreatedByUserID uint           `json:"created_by_user_id" gorm:"not null"`
	UpdatedByUserID *uint          `json:"updated_by_user_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (Block) TableName() string { return "block" }

// ValidBlockType reports whether value is a member of the block type set.
func ValidBlockType(value string) bool { return containsStatus(BlockTypes, value) }

// ValidCalloutStyle reports whether value is a member of the callout style set.
func ValidCalloutStyle(value string) bool { return containsStatus(CalloutStyles, value) }
