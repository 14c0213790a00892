package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fablab-reservation-backend/internal/model"
)

// MachineResponse represents the API response for a single machine.
type MachineResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TotalUnits  int    `json:"totalUnits"`
	IsActive    bool   `json:"isActive"`
}

// GetMachines handles the GET /api/machines request.
func GetMachines(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var machines []model.Machine
		if err := db.Order("name").Find(&machines).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve machines"})
			return
		}

		responses := make([]MachineResponse, 0, len(machines))
		for _, m := range machines {
			units := m.TotalUnits
			if units <= 0 {
				units = 1
			}
			responses = append(responses, MachineResponse{
				ID:          m.ID,
				Name:        m.Name,
				Description: m.Description,
				TotalUnits:  units,
				IsActive:    m.IsActive,
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}
