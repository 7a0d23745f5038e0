package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/samhans17/delivery-tracker/internal/apperr"
	"github.com/samhans17/delivery-tracker/internal/config"
	"github.com/samhans17/delivery-tracker/internal/database"
	"github.com/samhans17/delivery-tracker/internal/httpx"
	"github.com/samhans17/delivery-tracker/internal/logging"
	"github.com/samhans17/delivery-tracker/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func setSessionCookie(c *fiber.Ctx, cfg *config.Config, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// POST /api/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		body.Username = strings.TrimSpace(body.Username)
		if body.Username == "" || body.Password == "" {
			return apperr.Validation("Username and password are required")
		}

		var user models.User
		if err := database.DB.Where("username = ?", body.Username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Unauthorized("Invalid credentials")
			}
			return err
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			logging.WithField("username", body.Username).Warn("failed login")
			return apperr.Unauthorized("Invalid credentials")
		}

		token, claims, err := GenerateToken(cfg.JWTSecret, cfg.JWTTTL, &user)
		if err != nil {
			return err
		}
		setSessionCookie(c, cfg, token, claims.ExpiresAt.Time)

		logging.WithField("username", user.Username).Info("user logged in")
		return c.JSON(fiber.Map{
			"success": true,
			"token":   token,
			"user": fiber.Map{
				"id":       user.ID,
				"username": user.Username,
			},
		})
	}
}

// POST /api/logout
func LogoutHandler(cfg *config.Config, store RevocationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenStr := tokenFromRequest(c); tokenStr != "" {
			if claims, err := ParseToken(cfg.JWTSecret, tokenStr); err == nil {
				if err := store.Revoke(c.UserContext(), claims.ID, claims.ExpiresAt.Time); err != nil {
					return err
				}
				logging.WithField("username", claims.Username).Info("user logged out")
			}
		}

		setSessionCookie(c, cfg, "", time.Unix(0, 0))
		return httpx.OK(c)
	}
}

// GET /api/auth/check
func CheckHandler(cfg *config.Config, store RevocationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := sessionClaims(c, cfg, store)
		if err != nil {
			return err
		}
		if claims == nil {
			return c.JSON(fiber.Map{"authenticated": false})
		}
		return c.JSON(fiber.Map{
			"authenticated": true,
			"username":      claims.Username,
		})
	}
}
