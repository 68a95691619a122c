// Package handlers implements the gin handlers behind the HTTP API.
// Each handler depends on the narrowest client interface that covers
// its routes, so tests can stand in small fakes.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/soundprediction/grafo/pkg/server/dto"
)

// abortWithError writes an error response and stops the handler chain.
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error:   code,
		Message: message,
	})
}
