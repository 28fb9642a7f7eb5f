// Package bootstrap creates the first Admin account. It only ever runs
// when zero active admins exist, and refuses guessable placeholder
// usernames.
package bootstrap

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"workspace-service/internal/apperr"
	"workspace-service/internal/audit"
	"workspace-service/internal/model"
)

// PlaceholderUsernames are refused for the bootstrap admin.
var PlaceholderUsernames = []string{"admin", "root"}

// HasActiveAdmin reports whether an active Admin user already exists.
func HasActiveAdmin(db *gorm.DB) (bool, error) {
	var count int64
	err := db.Model(&model.User{}).
		Where("role = ? AND active = ?", model.RoleAdmin, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateAdmin creates the first Admin user with its audit entry in one
// transaction. It fails when an active admin already exists or the
// username is a placeholder.
func CreateAdmin(db *gorm.DB, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validationf("username is required")
	}
	for _, placeholder := range PlaceholderUsernames {
		if strings.EqualFold(username, placeholder) {
			return nil, apperr.Validationf("refusing to create admin with placeholder username %q", username)
		}
	}
	if password == "" {
		return nil, apperr.Validationf("password is required")
	}

	exists, err := HasActiveAdmin(db)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Validationf("an active admin already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Active:       true,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			Action:     audit.ActionBootstrapAdminCreated,
			EntityType: "User",
			EntityID:   audit.EntityID(user.ID),
			Metadata:   map[string]any{"username": user.Username},
			ActorID:    &user.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
