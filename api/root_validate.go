package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Validate only ever runs behind the JWT middleware, reaching it means
// the token was good
func (a *API) Validate(c *gin.Context) {
	c.Status(http.StatusOK)
}
