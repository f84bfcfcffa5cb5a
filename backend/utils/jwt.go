package utils

import (
	"errors"
	"strings"
	"time"

	"training-portal/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleLearner = "learner"
	RoleAdmin   = "admin"
)

// Identity is what the auth boundary hands to the rest of the request.
type Identity struct {
	LearnerID string
	Role      string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

func GenerateJWTToken(learnerID, role string, cfg *config.Config) (string, error) {
	if role == "" {
		role = RoleLearner
	}
	claims := jwt.MapClaims{
		"sub":  learnerID,
		"role": role,
		"exp":  time.Now().Add(cfg.TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseIdentity verifies tokenString and returns the identity it carries.
func ParseIdentity(tokenString string, cfg *config.Config) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return Identity{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return Identity{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid subject in token")
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = RoleLearner
	}
	return Identity{LearnerID: sub, Role: role}, nil
}

// ExtractIdentityFromToken reads the Authorization header, with or without a
// "Bearer " prefix.
func ExtractIdentityFromToken(c *fiber.Ctx, cfg *config.Config) (Identity, error) {
	tokenString := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if tokenString == "" {
		return Identity{}, fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}
	if len(tokenString) > 7 && strings.EqualFold(tokenString[:7], "bearer ") {
		tokenString = strings.TrimSpace(tokenString[7:])
	}
	return ParseIdentity(tokenString, cfg)
}
