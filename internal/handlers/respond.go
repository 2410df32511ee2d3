package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/six-app/six-backend/internal/errordata"
)

// fail writes the uniform error body and matching status.
func fail(c *gin.Context, code, msg string) {
	c.JSON(errordata.StatusFor(code), gin.H{"error": msg, "code": code})
}

// notConfigured is the stock response for routes whose upstream service
// could not be constructed at boot.
func notConfigured(c *gin.Context, what string) {
	fail(c, errordata.CodeNotConfigured, what+" is not configured")
}
