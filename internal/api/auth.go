package api

import (
	"net/http"
	"strings"

	"rentalmate/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const principalKey = "principal"

// AccessClaims are the claims the identity service puts in access
// tokens. This service only verifies them; it never mints tokens.
type AccessClaims struct {
	UserID int64  `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies the bearer token and stores the principal in
// the request context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized. Please login.",
			})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := &AccessClaims{}

		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Token is invalid or expired. Please login again.",
			})
			return
		}

		switch claims.Role {
		case models.RoleTenant, models.RoleOwner, models.RoleAdmin:
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Token carries an unknown role.",
			})
			return
		}

		c.Set(principalKey, models.Principal{ID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not in the allowed set.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		p := principalFrom(c)
		if !allowed[p.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Role '" + p.Role + "' is not authorized for this route",
			})
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) models.Principal {
	v, _ := c.Get(principalKey)
	p, _ := v.(models.Principal)
	return p
}
