package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"workspace-service/internal/audit"
	"workspace-service/internal/middleware"
	"workspace-service/internal/model"
	"workspace-service/pkg/database"
	"workspace-service/pkg/jwtutil"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"
)

func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var user model.User
	result := database.GetCore().Where("username = ?", req.Username).First(&user)
	if result.Error != nil {
		log.Warn("Login failed: unknown user", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials or inactive account"})
	}
	if !user.Active {
		log.Warn("Login failed: inactive account", zap.String("username", req.Username))
		prometheus.RecordAuthError("inactive_user")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials or inactive account"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn("Login failed: bad password", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials or inactive account"})
	}

	now := time.Now().UTC()
	err := database.GetCore().Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("last_login_at", now).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			Action:     audit.ActionLogin,
			EntityType: "User",
			EntityID:   audit.EntityID(user.ID),
			ActorID:    &user.ID,
			IP:         c.RealIP(),
		})
	})
	if err != nil {
		return writeError(c, err)
	}

	token, err := jwtutil.GenerateToken(&user)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user,
	})
}

func Logout(c echo.Context) error {
	actor := middleware.Actor(c)
	err := database.GetCore().Transaction(func(tx *gorm.DB) error {
		return audit.Record(tx, audit.Entry{
			Action:     audit.ActionLogout,
			EntityType: "User",
			EntityID:   audit.EntityID(actor.ID),
			ActorID:    &actor.ID,
			IP:         c.RealIP(),
		})
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func Profile(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.Actor(c))
}
