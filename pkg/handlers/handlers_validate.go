package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jcallaghan/roster-engine-go/pkg/models"
	"github.com/jcallaghan/roster-engine-go/pkg/roster"
)

// ValidateInput checks a roster input contract, and optionally a submitted
// roster against it, without running the solver
func (h *Handler) ValidateInput(c *gin.Context) {
	var req struct {
		Input       models.RosterInput       `json:"input"`
		Assignments []models.ShiftAssignment `json:"assignments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if err := h.Validate.Struct(&req.Input); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	// Check for duplicate employee IDs
	ids := make(map[string]bool)
	for _, emp := range req.Input.Employees {
		if ids[emp.ID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate employee ID: " + emp.ID})
			return
		}
		ids[emp.ID] = true
	}

	// No roster supplied: the input contract alone was being validated
	if len(req.Assignments) == 0 {
		if _, err := roster.NewContext(&req.Input); err != nil {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"valid": true,
			"stats": gin.H{
				"employee_count": len(req.Input.Employees),
				"station_count":  len(req.Input.BaseDemand),
			},
		})
		return
	}

	result, err := roster.Check(&req.Input, h.Engine, req.Assignments)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	h.RecordUsage(c, len(req.Assignments), len(req.Input.Employees), len(result.Violations))

	c.JSON(http.StatusOK, gin.H{
		"valid":           result.HardViolations == 0,
		"violations":      result.Violations,
		"hard_violations": result.HardViolations,
		"soft_violations": result.SoftViolations,
		"metrics":         result.Metrics,
	})
}
