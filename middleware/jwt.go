// Package middleware contains any custom middleware used in the app
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"ravent/agentic-api/model"
	"ravent/agentic-api/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewJWTMiddleware guards a route group with bearer token auth. On
// success the requesting user's ID is stored as userID in the context.
// Every failure mode answers 401 so callers can't tell them apart.
func NewJWTMiddleware(d *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Authorization header is missing",
				"requestID": requestID,
			})
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Authorization header must be of the form 'Bearer <token>'",
				"requestID": requestID,
			})
			return
		}

		userID, tokenType, err := security.ParseToken(tokenStr)
		if err != nil {
			msg := "Token is invalid"
			if errors.Is(err, security.ErrTokenExpired) {
				msg = "Token is expired"
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     msg,
				"requestID": requestID,
			})
			return
		}

		// Refresh tokens only buy new access tokens, they don't open doors
		if tokenType != security.TokenTypeAccess {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Token is invalid",
				"requestID": requestID,
			})
			return
		}

		// Tokens can outlive their account, so check the user still exists
		var exists bool
		err = d.Model(model.User{}).
			Select("count(*) > 0").
			Where("id = ?", userID).
			Find(&exists).
			Error
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check if user exists", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Token is invalid",
				"requestID": requestID,
			})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
