package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"workspace-service/internal/model"
)

// GetSetting reads a settings value from db. A missing key is ("", nil).
func GetSetting(db *gorm.DB, key string) (string, error) {
	var setting model.AppSetting
	err := db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read setting %q: %w", key, err)
	}
	return setting.Value, nil
}

// SetSetting upserts a settings value on db, which may be a transaction.
func SetSetting(db *gorm.DB, key, value string) error {
	var setting model.AppSetting
	err := db.Where("key = ?", key).First(&setting).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		setting = model.AppSetting{Key: key, Value: value}
		if err := db.Create(&setting).Error; err != nil {
			return fmt.Errorf("create setting %q: %w", key, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read setting %q: %w", key, err)
	default:
		if err := db.Model(&setting).Update("value", value).Error; err != nil {
			return fmt.Errorf("update setting %q: %w", key, err)
		}
		return nil
	}
}
