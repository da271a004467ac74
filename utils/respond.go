package utils

import "github.com/gin-gonic/gin"

// RespondWithError sends a structured error payload with the given status.
func RespondWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}
