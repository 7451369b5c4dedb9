package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/PrajwalpGM256/Medible/config"
	"github.com/PrajwalpGM256/Medible/models"
	"github.com/PrajwalpGM256/Medible/services"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

func GetHistory(c *gin.Context) {
	userID := c.GetUint("userID")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}

	var history []models.InteractionCheck
	err := config.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&history).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load history")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"history": history,
		"count":   len(history),
	})
}

type SaveCheckInput struct {
	FoodName     string   `json:"food_name" binding:"required"`
	Medications  []string `json:"medications" binding:"required,min=1"`
	Interactions []struct {
		Severity string `json:"severity"`
	} `json:"interactions"`
}

// SaveCheck records one interaction check. had_interaction, the count and
// max_severity are derived here, never trusted from the client.
func SaveCheck(c *gin.Context) {
	userID := c.GetUint("userID")

	var input SaveCheckInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	foodName := strings.TrimSpace(input.FoodName)
	if foodName == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Food name is required")
		return
	}

	var maxSeverity *string
	for _, i := range input.Interactions {
		if maxSeverity == nil || services.SeverityOutranks(i.Severity, *maxSeverity) {
			sev := i.Severity
			maxSeverity = &sev
		}
	}

	meds, err := json.Marshal(input.Medications)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid medications list")
		return
	}

	check := models.InteractionCheck{
		UserID:             userID,
		FoodName:           foodName,
		HadInteraction:     len(input.Interactions) > 0,
		InteractionCount:   len(input.Interactions),
		MaxSeverity:        maxSeverity,
		MedicationsChecked: datatypes.JSON(meds),
	}
	if err := config.DB.Create(&check).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save check")
		return
	}

	respond(c, http.StatusCreated, gin.H{"check": check})
}

func DeleteCheck(c *gin.Context) {
	userID := c.GetUint("userID")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid check id")
		return
	}

	var check models.InteractionCheck
	if err := config.DB.Where("id = ? AND user_id = ?", id, userID).First(&check).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Check not found")
		return
	}

	if err := config.DB.Delete(&check).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete check")
		return
	}

	respond(c, http.StatusOK, gin.H{"deleted_id": check.ID})
}

func ClearHistory(c *gin.Context) {
	userID := c.GetUint("userID")

	result := config.DB.Where("user_id = ?", userID).Delete(&models.InteractionCheck{})
	if result.Error != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to clear history")
		return
	}

	respond(c, http.StatusOK, gin.H{"deleted_count": result.RowsAffected})
}
