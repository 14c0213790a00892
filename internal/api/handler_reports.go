package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fablab-reservation-backend/internal/model"
	"fablab-reservation-backend/internal/parse"
	"fablab-reservation-backend/internal/report"
)

// GetUsageReport handles the GET /api/reports/usage request, returning
// chart-ready buckets of reservation activity.
func (h *Handler) GetUsageReport(c *gin.Context) {
	granularity := report.Granularity(c.DefaultQuery("granularity", string(report.Daily)))
	switch granularity {
	case report.Daily, report.Weekly, report.Monthly, report.Yearly:
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'granularity'. Use day, week, month or year."})
		return
	}

	var from, to time.Time
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = parse.ParseDate(v); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date"})
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = parse.ParseDate(v); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date"})
			return
		}
	}

	reservations, err := h.store.ListReservations(c.Request.Context(), from, to)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reservations"})
		return
	}

	buckets := report.Aggregate(usageRecords(reservations), granularity, []string{"quantity", "hours", "machines"})
	c.JSON(http.StatusOK, buckets)
}

// usageRecords flattens reservations into bucketing records. Cancelled and
// rejected reservations never consumed machine time and are left out.
func usageRecords(reservations []model.Reservation) []report.Record {
	records := make([]report.Record, 0, len(reservations))
	for _, r := range reservations {
		if r.Status == model.StatusCancelled || r.Status == model.StatusRejected {
			continue
		}

		hours := 0.0
		for _, slot := range r.TimeSlots {
			if slot.EndTime.After(slot.StartTime) {
				hours += slot.EndTime.Sub(slot.StartTime).Hours()
			}
		}

		records = append(records, report.Record{
			Date: r.Date,
			Fields: map[string]any{
				"quantity": r.Quantity,
				"hours":    hours,
				"machines": len(r.Machines),
			},
		})
	}
	return records
}
