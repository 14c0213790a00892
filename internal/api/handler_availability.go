package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"fablab-reservation-backend/internal/availability"
	"fablab-reservation-backend/internal/parse"
)

// GetAvailability handles the GET /api/availability request. It computes the
// remaining morning/afternoon capacity for a date and machine set over a
// fresh snapshot of reservations.
func (h *Handler) GetAvailability(c *gin.Context) {
	date, err := parse.ParseDate(c.Query("date"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing 'date'. Use YYYY-MM-DD."})
		return
	}

	machineIDs, err := parseMachineIDs(c.Query("machines"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'machines'. Use a comma-separated list of IDs."})
		return
	}

	quantity := 1
	if q := c.Query("quantity"); q != "" {
		quantity, err = strconv.Atoi(q)
		if err != nil || quantity <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'quantity'."})
			return
		}
	}

	ctx := c.Request.Context()
	reservations, err := h.store.ListReservations(ctx, date, date)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reservations"})
		return
	}
	catalog, err := h.store.ListMachines(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve machines"})
		return
	}
	blocked, err := h.store.ListBlockedDates(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blocked dates"})
		return
	}

	avail := availability.Compute(date, machineIDs, quantity, reservations, catalog, blocked)
	c.JSON(http.StatusOK, gin.H{
		"date":      date.Format("2006-01-02"),
		"morning":   avail.Morning,
		"afternoon": avail.Afternoon,
	})
}

func parseMachineIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
