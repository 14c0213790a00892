package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fablab-reservation-backend/internal/parse"
)

// GetBlockedDates handles the GET /api/blocked-dates request. Blocked dates
// apply to every machine; there is no per-machine blocking.
func (h *Handler) GetBlockedDates(c *gin.Context) {
	dates, err := h.store.ListBlockedDates(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blocked dates"})
		return
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Date.Format("2006-01-02"))
	}
	c.JSON(http.StatusOK, gin.H{"blocked_dates": out})
}

type blockedDateRequest struct {
	Date string `json:"date" binding:"required"`
}

// AddBlockedDate handles the POST /api/blocked-dates request.
func (h *Handler) AddBlockedDate(c *gin.Context) {
	var req blockedDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := parse.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date. Use YYYY-MM-DD."})
		return
	}

	if err := h.store.AddBlockedDate(c.Request.Context(), date); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to block date"})
		return
	}
	c.Status(http.StatusCreated)
}

// RemoveBlockedDate handles the DELETE /api/blocked-dates request.
func (h *Handler) RemoveBlockedDate(c *gin.Context) {
	date, err := parse.ParseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing 'date'. Use YYYY-MM-DD."})
		return
	}

	if err := h.store.RemoveBlockedDate(c.Request.Context(), date); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unblock date"})
		return
	}
	c.Status(http.StatusNoContent)
}
