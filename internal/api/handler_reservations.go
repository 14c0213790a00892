package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fablab-reservation-backend/internal/availability"
	"fablab-reservation-backend/internal/model"
	"fablab-reservation-backend/internal/parse"
	"fablab-reservation-backend/internal/selection"
	"fablab-reservation-backend/internal/store"
)

type dateSelectionRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

type createReservationRequest struct {
	UserName  string                   `json:"userName" binding:"required"`
	UserEmail string                   `json:"userEmail"`
	Equipment model.EquipmentSelection `json:"equipment"`
	Quantity  int                      `json:"quantity"`
	Dates     []dateSelectionRequest   `json:"dates" binding:"required,min=1,dive"`
}

// CreateReservation handles the POST /api/reservations request. One
// reservation is created per requested date; every slot is revalidated
// against a fresh availability snapshot before anything is persisted.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	names := req.Equipment.Names()
	if len(names) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "At least one machine must be selected."})
		return
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	if quantity > h.cfg.Booking.MaxQuantity {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Requested quantity exceeds the booking limit."})
		return
	}

	ctx := c.Request.Context()
	catalog, err := h.store.ListMachines(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve machines"})
		return
	}

	machines, err := resolveMachines(catalog, names)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	machineIDs := make([]int64, len(machines))
	for i, m := range machines {
		machineIDs[i] = m.ID
	}

	blocked, err := h.store.ListBlockedDates(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve blocked dates"})
		return
	}

	sel := selection.NewSelector(h.cfg.Booking.MaxDatesPerRequest)
	for _, d := range req.Dates {
		date, err := parse.ParseDate(d.Date)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid date: " + d.Date})
			return
		}

		reservations, err := h.store.ListReservations(ctx, date, date)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reservations"})
			return
		}
		avail := availability.Compute(date, machineIDs, quantity, reservations, catalog, blocked)

		before := sel.Len()
		sel.AddDate(date, avail)
		if sel.Len() == before {
			// Over the cap or a duplicate date: ignored, per the picker contract.
			continue
		}
		idx := sel.Len() - 1

		if err := sel.SetStartTime(idx, d.StartTime); err != nil {
			writeSelectionError(c, err)
			return
		}
		if err := sel.SetEndTime(idx, d.EndTime); err != nil {
			writeSelectionError(c, err)
			return
		}
	}

	selections := sel.Selections()
	if len(selections) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No valid dates in the request."})
		return
	}

	created := make([]model.Reservation, 0, len(selections))
	for _, s := range selections {
		startMin, _ := parse.ParseClock(s.StartTime)
		endMin, _ := parse.ParseClock(s.EndTime)

		r := model.Reservation{
			UserName:  req.UserName,
			UserEmail: req.UserEmail,
			Date:      s.Date,
			Status:    model.StatusPending,
			Quantity:  quantity,
			Machines:  machines,
			TimeSlots: []model.TimeSlot{
				{
					StartTime: s.Date.Add(time.Duration(startMin) * time.Minute),
					EndTime:   s.Date.Add(time.Duration(endMin) * time.Minute),
				},
			},
		}
		if err := h.store.CreateReservation(ctx, &r); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reservation"})
			return
		}
		created = append(created, r)
	}

	c.JSON(http.StatusCreated, gin.H{"reservations": created})
}

func writeSelectionError(c *gin.Context, err error) {
	var verr *selection.ValidationError
	if errors.As(err, &verr) {
		status := http.StatusUnprocessableEntity
		if verr.Conflict {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": verr.Message})
		return
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
}

func resolveMachines(catalog []model.Machine, names []string) ([]model.Machine, error) {
	byName := make(map[string]model.Machine, len(catalog))
	for _, m := range catalog {
		byName[strings.ToLower(m.Name)] = m
	}

	machines := make([]model.Machine, 0, len(names))
	for _, name := range names {
		m, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, errors.New("Unknown machine: " + name)
		}
		if !m.IsActive {
			return nil, errors.New("Machine is not available for booking: " + name)
		}
		machines = append(machines, m)
	}
	return machines, nil
}

// ListReservations handles the GET /api/reservations request.
func (h *Handler) ListReservations(c *gin.Context) {
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
	c.JSON(http.StatusOK, reservations)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateReservationStatus handles the PATCH /api/reservations/:id/status
// request.
func (h *Handler) UpdateReservationStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !knownStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + req.Status})
		return
	}

	updated, machineIDs, err := h.store.UpdateReservationStatus(c.Request.Context(), c.Param("id"), req.Status, time.Now().UTC())
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return
	case errors.Is(err, store.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reservation"})
		return
	}

	if h.notifier != nil {
		event := "reservation " + strings.ToLower(req.Status)
		for _, id := range machineIDs {
			h.notifier.Dispatch(id, event)
		}
	}

	c.JSON(http.StatusOK, updated)
}

func knownStatus(s string) bool {
	switch s {
	case model.StatusPending, model.StatusApproved, model.StatusOngoing,
		model.StatusCompleted, model.StatusRejected, model.StatusCancelled:
		return true
	}
	return false
}
