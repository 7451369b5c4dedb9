package controllers

import (
	"net/http"
	"strings"

	"github.com/PrajwalpGM256/Medible/services"

	"github.com/gin-gonic/gin"
)

type DrugController struct {
	FDA *services.OpenFDAService
}

func NewDrugController(fda *services.OpenFDAService) *DrugController {
	return &DrugController{FDA: fda}
}

func (dc *DrugController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing required parameter: q")
		return
	}

	drugs, err := dc.FDA.SearchDrugs(query)
	if err != nil {
		respondError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Drug search is temporarily unavailable")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"query": query,
		"count": len(drugs),
		"drugs": drugs,
	})
}
