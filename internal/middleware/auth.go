package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/farhansajid/visamock/config"
	"github.com/farhansajid/visamock/internal/dto"
	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// Context keys set by RequireAuth.
const (
	ContextUserID   = "userID"
	ContextEmail    = "userEmail"
	ContextFullName = "userFullName"
)

// RequireAuth verifies the HS256 bearer token and stores the caller's
// identity on the request context. The subject claim is the user ID.
func RequireAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Missing bearer token"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid token claims"})
			return
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Token has no subject"})
			return
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid subject in token"})
			return
		}

		c.Set(ContextUserID, uint(userID))
		if email, ok := claims["email"].(string); ok {
			c.Set(ContextEmail, email)
		}
		if name, ok := claims["name"].(string); ok {
			c.Set(ContextFullName, name)
		}
		c.Next()
	}
}

// RequireAdmin gates a route group to users holding the admin role. Must
// run after RequireAuth.
func RequireAdmin(roleRepo repository.UserRoleRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		isAdmin, err := roleRepo.HasRole(userID, model.RoleAdmin)
		if err != nil {
			log.Error().Err(err).Uint("userID", userID).Msg("Admin role lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Role check failed"})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Error: "Admin access required"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user ID set by RequireAuth.
func UserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}
