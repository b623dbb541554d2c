package utils

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taskboard/domain/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingToken = errors.New("missing token")
)

// PrincipalLocalKey fiber locals key holding *models.Principal
const PrincipalLocalKey = "principal"

// PrincipalClaims token ที่ออกโดย auth layer ภายนอก
type PrincipalClaims struct {
	UserID      string   `json:"user_id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// ParsePrincipalToken validates an HS256 token and builds the principal.
// An empty permission list falls back to the role's defaults.
func ParsePrincipalToken(tokenString, jwtSecret string) (*models.Principal, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &PrincipalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*PrincipalClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	role := models.Role(claims.Role)
	if !role.IsValid() {
		return nil, ErrInvalidToken
	}

	perms := make([]models.Capability, 0, len(claims.Permissions))
	for _, p := range claims.Permissions {
		perms = append(perms, models.Capability(p))
	}
	return models.NewPrincipal(userID, role, perms), nil
}

func ExtractTokenFromHeader(authHeader string) string {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func SetPrincipal(c *fiber.Ctx, p *models.Principal) {
	c.Locals(PrincipalLocalKey, p)
}

func GetPrincipal(c *fiber.Ctx) (*models.Principal, error) {
	p, ok := c.Locals(PrincipalLocalKey).(*models.Principal)
	if !ok || p == nil {
		return nil, errors.New("principal not found in context")
	}
	return p, nil
}
