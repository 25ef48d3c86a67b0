package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Canned answer served for every query. Placeholder until the actual
// retrieval pipeline replaces this endpoint.
const (
	chatAnswer = "In a Dynamic Bayesian Stackelberg Game, the leader's main objective is to maximize " +
		"her utility over multiple rounds rather than just identifying the follower type. The leader " +
		"commits to a Dynamic Bayesian Stackelberg Policy (DSP) before the game starts, which specifies " +
		"the leader's strategy at each round. This policy is observed by the follower in advance. This " +
		"type of commitment is common in literature related to dynamic pricing problems, dynamic " +
		"mechanism design, and Stackelberg security games. The optimal DSP is referred to as the " +
		"Dynamic Bayesian Stackelberg Equilibrium (DSE)."
	chatType = "Knowledge/RAG"
)

var chatSources = []string{"CSE_1.pdf"}

type chatBody struct {
	Query string `json:"query" binding:"required"`
}

// Chat echoes the query back with a fixed answer. No state, no
// external calls.
func (a *API) Chat(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data chatBody
	if err := c.ShouldBindJSON(&data); err != nil || data.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Query field can't be empty",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"content": gin.H{
			"query":   data.Query,
			"answer":  chatAnswer,
			"type":    chatType,
			"sources": chatSources,
		},
	})
}
