package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/PrajwalpGM256/Medible/config"
	"github.com/PrajwalpGM256/Medible/models"

	"github.com/gin-gonic/gin"
)

type AddMedicationInput struct {
	DrugName    string `json:"drug_name" binding:"required"`
	GenericName string `json:"generic_name"`
	Dosage      string `json:"dosage"`
	Frequency   string `json:"frequency"`
}

func ListMedications(c *gin.Context) {
	userID := c.GetUint("userID")

	var medications []models.UserMedication
	if err := config.DB.Where("user_id = ?", userID).Order("created_at").Find(&medications).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load medications")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"medications": medications,
		"count":       len(medications),
	})
}

func AddMedication(c *gin.Context) {
	userID := c.GetUint("userID")

	var input AddMedicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	drugName := strings.TrimSpace(input.DrugName)
	if drugName == "" || len(drugName) > 255 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "drug_name is required")
		return
	}

	var existing models.UserMedication
	if err := config.DB.Where("user_id = ? AND drug_name = ?", userID, drugName).First(&existing).Error; err == nil {
		respondError(c, http.StatusBadRequest, "DUPLICATE_MEDICATION", "Medication already exists in your list")
		return
	}

	medication := models.UserMedication{
		UserID:      userID,
		DrugName:    drugName,
		GenericName: strings.TrimSpace(input.GenericName),
		Dosage:      strings.TrimSpace(input.Dosage),
		Frequency:   strings.TrimSpace(input.Frequency),
	}
	if err := config.DB.Create(&medication).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add medication")
		return
	}

	respond(c, http.StatusCreated, gin.H{"medication": medication})
}

func RemoveMedication(c *gin.Context) {
	userID := c.GetUint("userID")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid medication id")
		return
	}

	var medication models.UserMedication
	if err := config.DB.Where("id = ? AND user_id = ?", id, userID).First(&medication).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Medication not found")
		return
	}

	if err := config.DB.Delete(&medication).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove medication")
		return
	}

	respond(c, http.StatusOK, gin.H{"deleted_id": medication.ID})
}
