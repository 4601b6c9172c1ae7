package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jcallaghan/roster-engine-go/pkg/database"
)

// GetMyUsage returns usage stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	var usage []database.APIUsage
	if err := h.DB.Where("key_id = ?", apiKey.ID).Order("date desc").Limit(30).Find(&usage).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}

	// Calculate totals
	var totalRequests, totalAssignments, totalViolations int64
	for _, u := range usage {
		totalRequests += int64(u.RequestCount)
		totalAssignments += int64(u.TotalAssignments)
		totalViolations += int64(u.TotalViolations)
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": usage,
		"totals": gin.H{
			"requests":    totalRequests,
			"assignments": totalAssignments,
			"violations":  totalViolations,
		},
	})
}

// GetExport returns a previously persisted roster export for the
// authenticated key
func (h *Handler) GetExport(c *gin.Context) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	var export database.RosterExport
	err := h.DB.Preload("Rows").
		Where("id = ? AND key_id = ?", c.Param("id"), apiKey.ID).
		First(&export).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Export not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"export": export})
}

// ListExports returns the recent exports of the authenticated key, without
// their rows
func (h *Handler) ListExports(c *gin.Context) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	var exports []database.RosterExport
	h.DB.Where("key_id = ?", apiKey.ID).Order("created_at desc").Limit(20).Find(&exports)
	c.JSON(http.StatusOK, gin.H{"exports": exports})
}
