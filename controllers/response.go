package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// All endpoints share one envelope: {"data": ...} on success and
// {"error": {"code", "message"}} on failure, each with request metadata.

func respond(c *gin.Context, status int, data gin.H) {
	c.JSON(status, gin.H{
		"data": data,
		"meta": meta(c),
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{"code": code, "message": message},
		"meta":  meta(c),
	})
}

func meta(c *gin.Context) gin.H {
	return gin.H{
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": c.GetString("requestID"),
	}
}
