package api

import (
	"net/http"

	"ravent/agentic-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserProfile returns the authenticated user's id, username and email.
// Email is an empty string when the user never provided one.
func (a *API) UserProfile(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var user model.User

	err := a.DB.Where("id = ?", userID).First(&user).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch profile", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}
