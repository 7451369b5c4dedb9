package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/PrajwalpGM256/Medible/config"
	"github.com/PrajwalpGM256/Medible/models"
	"github.com/PrajwalpGM256/Medible/utils"

	"github.com/gin-gonic/gin"
)

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"code": "UNAUTHORIZED", "message": message},
		"meta": gin.H{
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"request_id": c.GetString("requestID"),
		},
	})
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(c, "Authorization header required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseJWT(tokenString)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		email, _ := claims["email"].(string)
		if email == "" {
			unauthorized(c, "email claim missing")
			return
		}

		var user models.User
		if err := config.DB.Where("email = ? AND is_active = ?", email, true).First(&user).Error; err != nil {
			unauthorized(c, "user not found")
			return
		}

		c.Set("userID", user.ID)
		c.Set("currentUser", &user)
		c.Next()
	}
}

// CurrentUser pulls the authenticated user set by AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get("currentUser"); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
