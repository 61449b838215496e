package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/partforge/configurator/internal/identity"
)

var errNotBearer = errors.New("authorization header must start with 'Bearer '")

// AuthRequired verifies the bearer token against the external identity
// provider (spec.md §6 "bearer token for user context") and stores the
// resolved principal in the request context.
func AuthRequired(verifier *identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header is required",
			})
			c.Abort()
			return
		}

		token, err := extractBearerToken(authHeader)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		principal, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", principal.UserID)
		c.Set("user_email", principal.Email)
		c.Set("is_admin", principal.IsAdmin)

		c.Next()
	}
}

// AdminRequired ensures the authenticated caller is flagged as admin by the
// identity provider (spec.md §4.5 "business workflow is admin-driven").
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, exists := c.Get("is_admin")
		if !exists || !isAdmin.(bool) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Admin access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractBearerToken extracts the token from a "Bearer <token>" header.
func extractBearerToken(authHeader string) (string, error) {
	const bearerPrefix = "Bearer "
	if len(authHeader) < len(bearerPrefix) || authHeader[:len(bearerPrefix)] != bearerPrefix {
		return "", errNotBearer
	}
	return authHeader[len(bearerPrefix):], nil
}
