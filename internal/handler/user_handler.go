package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"workspace-service/internal/audit"
	"workspace-service/internal/middleware"
	"workspace-service/internal/model"
	"workspace-service/pkg/database"
	"workspace-service/pkg/logger"
)

// Admin user management. All routes here sit behind RequireAdmin.

func ListUsers(c echo.Context) error {
	var users []model.User
	if err := database.GetCore().Order("username ASC").Find(&users).Error; err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

func CreateUser(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
		Active   *bool  `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	var existing model.User
	if err := database.GetCore().Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	user := model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       active,
	}
	err = database.GetCore().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			Action:     audit.ActionUserCreated,
			EntityType: "User",
			EntityID:   audit.EntityID(user.ID),
			Metadata:   map[string]any{"role": string(role)},
			ActorID:    &actor.ID,
			IP:         c.RealIP(),
		})
	})
	if err != nil {
		return writeError(c, err)
	}

	log.Info("User created", zap.String("username", user.Username), zap.String("role", string(role)))
	return c.JSON(http.StatusCreated, echo.Map{"user": user})
}

func UpdateUser(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var user model.User
	if err := database.GetCore().First(&user, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	var req struct {
		Role     *string `json:"role"`
		Active   *bool   `json:"active"`
		Password *string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	changes := map[string]any{}
	updates := map[string]any{}

	if req.Role != nil {
		role, ok := model.ParseRole(*req.Role)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
		}
		if role != user.Role {
			changes["role"] = map[string]any{"from": string(user.Role), "to": string(role)}
			updates["role"] = role
		}
	}
	if req.Active != nil && *req.Active != user.Active {
		changes["active"] = map[string]any{"from": user.Active, "to": *req.Active}
		updates["active"] = *req.Active
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user update failed"})
		}
		changes["password_reset"] = true
		updates["password_hash"] = string(hash)
	}

	if len(changes) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"message": "no changes to save", "user": user})
	}

	err = database.GetCore().Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			Action:     audit.ActionUserUpdated,
			EntityType: "User",
			EntityID:   audit.EntityID(user.ID),
			Metadata:   changes,
			ActorID:    &actor.ID,
			IP:         c.RealIP(),
		})
	})
	if err != nil {
		return writeError(c, err)
	}

	log.Info("User updated", zap.String("username", user.Username))
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}
