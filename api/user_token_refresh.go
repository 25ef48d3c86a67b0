package api

import (
	"net/http"

	"ravent/agentic-api/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type refreshBody struct {
	Refresh string `json:"refresh"`
}

func (a *API) TokenRefresh(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data refreshBody
	if err := c.ShouldBindJSON(&data); err != nil || data.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Refresh field can't be empty",
			"requestID": requestID,
		})
		return
	}

	userID, tokenType, err := security.ParseToken(data.Refresh)
	if err != nil || tokenType != security.TokenTypeRefresh {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Refresh token is invalid or expired",
			"requestID": requestID,
		})
		return
	}

	access, err := security.MakeAccessToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to mint access token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access": access,
	})
}
