package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/lizet96/agenda-backend/models"
)

// Roles reconocidos en el claim user_type
const (
	RoleAdmin        = "admin"
	RoleEspecialista = "especialista"
	RoleCliente      = "cliente"
)

// ValidRole indica si role es uno de los roles reconocidos
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEspecialista, RoleCliente:
		return true
	}
	return false
}

// Claims personalizados para el JWT
type Claims struct {
	UserID   int    `json:"user_id"`
	UserType string `json:"user_type"`
	jwt.RegisteredClaims
}

// GenerateJWT genera un token JWT firmado con secret
func GenerateJWT(secret string, userID int, userType string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("middleware: empty jwt secret")
	}
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		UserType: userType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// JWTMiddleware valida el token Bearer y guarda user_id y user_type en Locals
func JWTMiddleware(secret string) fiber.Handler {
	key := []byte(secret)
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || tokenString == authHeader {
			return fallo(c, models.NoAutorizado)
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return fallo(c, models.NoAutorizado)
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_type", claims.UserType)
		return c.Next()
	}
}

// RequireRole exige que el usuario autenticado tenga uno de los roles indicados
func RequireRole(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userType, ok := c.Locals("user_type").(string)
		if !ok {
			return fallo(c, models.AccesoDenegado)
		}
		for _, role := range allowedRoles {
			if userType == role {
				return c.Next()
			}
		}
		return fallo(c, models.AccesoDenegado)
	}
}

func fallo(c *fiber.Ctx, cond models.Condicion) error {
	r := models.Fallo(cond)
	return c.Status(r.HTTPStatus).JSON(r)
}
