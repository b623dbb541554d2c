package middleware

import (
	"github.com/gofiber/fiber/v2"

	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

// Protected validates the bearer JWT and stores the principal in locals
func Protected(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.UnauthorizedResponse(c, "Missing authorization header")
		}

		token := utils.ExtractTokenFromHeader(authHeader)
		if token == "" {
			return utils.UnauthorizedResponse(c, "Invalid authorization header format")
		}

		principal, err := utils.ParsePrincipalToken(token, jwtSecret)
		if err != nil {
			logger.WarnContext(c.UserContext(), "Token validation failed", "error", err)
			switch err {
			case utils.ErrExpiredToken:
				return utils.UnauthorizedResponse(c, "Token has expired")
			case utils.ErrMissingToken:
				return utils.UnauthorizedResponse(c, "Missing token")
			default:
				return utils.UnauthorizedResponse(c, "Invalid token")
			}
		}

		utils.SetPrincipal(c, principal)
		return c.Next()
	}
}

// Optional sets the principal when a valid token is present, never rejects.
// Browser websocket clients pass the token as ?token= since they cannot set headers.
func Optional(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := utils.ExtractTokenFromHeader(c.Get("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return c.Next()
		}

		if principal, err := utils.ParsePrincipalToken(token, jwtSecret); err == nil {
			utils.SetPrincipal(c, principal)
		}
		return c.Next()
	}
}
