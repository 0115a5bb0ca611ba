package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/duty-scheduler-go/pkg/arrangement"
	"github.com/arnavshah/duty-scheduler-go/pkg/models"
)

// ValidateInput parses the roster and arrangement of a JSON fill request
// without filling anything.
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.FillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": err.Error()})
		return
	}
	if input.Arrangement == "" {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": "arrangement is required"})
		return
	}

	req, err := h.jsonRequest(input)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}
	snap, err := arrangement.Parse(req.arrangement, req.roster, h.Log)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	assigned := 0
	for _, d := range snap.Duties {
		assigned += d.Filled()
	}
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"student_count":  len(req.roster.Students()),
			"family_count":   len(req.roster.Parents()),
			"duty_count":     len(snap.Duties),
			"assigned_count": assigned,
			"defaults":       snap.DefaultNames(),
		},
		"dropped": snap.Dropped,
	})
}
