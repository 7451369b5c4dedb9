package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/PrajwalpGM256/Medible/middlewares"
	"github.com/PrajwalpGM256/Medible/services"
	"github.com/PrajwalpGM256/Medible/utils"

	"github.com/gin-gonic/gin"
)

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	firstName, lastName := input.FirstName, input.LastName
	if firstName == "" && input.Name != "" {
		firstName, lastName = splitName(input.Name)
	}

	user, err := services.RegisterUser(input.Email, input.Password, firstName, lastName)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			respondError(c, http.StatusConflict, "EMAIL_TAKEN", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed")
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Email)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not generate token")
		return
	}

	respond(c, http.StatusCreated, gin.H{
		"user":   user.Profile(),
		"tokens": gin.H{"access_token": token},
	})
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user, token, err := services.AuthenticateUser(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"user":   user.Profile(),
		"tokens": gin.H{"access_token": token},
	})
}

func Me(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	respond(c, http.StatusOK, gin.H{"user": user.Profile()})
}

// splitName turns a display name into first/last: the first
// whitespace-delimited token is the first name, the remainder the last.
func splitName(name string) (string, string) {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
