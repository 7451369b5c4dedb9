package controllers

import (
	"net/http"
	"strings"

	"github.com/PrajwalpGM256/Medible/services"

	"github.com/gin-gonic/gin"
)

type InteractionController struct {
	Engine *services.InteractionEngine
	Hub    *services.AlertHub
}

func NewInteractionController(engine *services.InteractionEngine, hub *services.AlertHub) *InteractionController {
	return &InteractionController{Engine: engine, Hub: hub}
}

// ByDrug lists every known food interaction for one drug. This is the
// lookup the client's aggregation loop hits once per medication.
func (ic *InteractionController) ByDrug(c *gin.Context) {
	drug := strings.TrimSpace(c.Param("name"))
	if drug == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing required parameter: drug_name")
		return
	}

	interactions := ic.Engine.DrugInteractions(drug)

	respond(c, http.StatusOK, gin.H{
		"drug_queried":      drug,
		"interaction_count": len(interactions),
		"interactions":      interactions,
	})
}

func (ic *InteractionController) Check(c *gin.Context) {
	food := strings.TrimSpace(c.Query("food"))
	drug := strings.TrimSpace(c.Query("drug"))
	if food == "" || drug == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Both food and drug parameters are required")
		return
	}

	interactions := ic.Engine.CheckInteraction(food, drug)

	overall := ""
	if len(interactions) > 0 {
		overall = interactions[0].Severity
	}
	respond(c, http.StatusOK, gin.H{
		"food_queried":      food,
		"drug_queried":      drug,
		"has_interaction":   len(interactions) > 0,
		"interaction_count": len(interactions),
		"overall_severity":  overall,
		"interactions":      interactions,
	})
}

type CheckMultipleInput struct {
	Food        string   `json:"food" binding:"required"`
	Medications []string `json:"medications" binding:"required,min=1,max=20"`
}

func (ic *InteractionController) CheckMultiple(c *gin.Context) {
	var input CheckMultipleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	summary := ic.Engine.CheckFoodAgainstMedications(input.Food, input.Medications)

	if summary.HasHighSeverity && ic.Hub != nil {
		ic.Hub.BroadcastAlert(c.GetUint("userID"), services.HighRiskAlert{
			Kind:             "check.high_risk",
			FoodName:         summary.FoodChecked,
			MaxSeverity:      summary.MaxSeverity,
			InteractionCount: summary.TotalWarnings,
		})
	}

	respond(c, http.StatusOK, gin.H{
		"food_checked":        summary.FoodChecked,
		"medications_checked": summary.MedicationsChecked,
		"total_warnings":      summary.TotalWarnings,
		"has_high_severity":   summary.HasHighSeverity,
		"max_severity":        summary.MaxSeverity,
		"warnings":            summary.Warnings,
	})
}

func (ic *InteractionController) Health(c *gin.Context) {
	stats := ic.Engine.Stats()

	status := "healthy"
	if stats.TotalInteractions == 0 {
		status = "degraded"
	}
	respond(c, http.StatusOK, gin.H{
		"status":              status,
		"interactions_loaded": stats.TotalInteractions,
		"version":             stats.Version,
		"severity_breakdown":  stats.SeverityBreakdown,
	})
}
