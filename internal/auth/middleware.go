package auth

import (
	"strings"

	"github.com/samhans17/delivery-tracker/internal/apperr"
	"github.com/samhans17/delivery-tracker/internal/config"
	"github.com/samhans17/delivery-tracker/internal/logging"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUsernameKey = "username"
	CtxClaimsKey   = "claims"

	CookieName = "session"
)

// tokenFromRequest prefers the session cookie and falls back to an
// "Authorization: Bearer" header for API clients.
func tokenFromRequest(c *fiber.Ctx) string {
	if v := c.Cookies(CookieName); v != "" {
		return v
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// sessionClaims returns the claims of a valid, unrevoked token or nil.
func sessionClaims(c *fiber.Ctx, cfg *config.Config, store RevocationStore) (*Claims, error) {
	tokenStr := tokenFromRequest(c)
	if tokenStr == "" {
		return nil, nil
	}
	claims, err := ParseToken(cfg.JWTSecret, tokenStr)
	if err != nil {
		return nil, nil
	}
	revoked, err := store.IsRevoked(c.UserContext(), claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, nil
	}
	return claims, nil
}

// JWTMiddleware rejects requests without a valid session.
func JWTMiddleware(cfg *config.Config, store RevocationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenFromRequest(c) == "" {
			return apperr.Unauthorized("Authentication required")
		}

		claims, err := sessionClaims(c, cfg, store)
		if err != nil {
			logging.WithField("error", err.Error()).Error("revocation lookup failed")
			return err
		}
		if claims == nil {
			return apperr.Unauthorized("Invalid or expired session")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUsernameKey, claims.Username)
		c.Locals(CtxClaimsKey, claims)

		return c.Next()
	}
}
