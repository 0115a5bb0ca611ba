package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/duty-scheduler-go/pkg/database"
)

// GetMyUsage returns usage stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	usage, err := database.UsageOf(h.DB, apiKey.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}

	var totalRequests, totalDuties, totalStudents int64
	for _, u := range usage {
		totalRequests += int64(u.RequestCount)
		totalDuties += int64(u.TotalDuties)
		totalStudents += int64(u.TotalStudents)
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": usage,
		"totals": gin.H{
			"requests": totalRequests,
			"duties":   totalDuties,
			"students": totalStudents,
		},
	})
}
