package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fablab-reservation-backend/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func TestCompute(t *testing.T) {
	mar18 := day(2024, time.March, 18)

	catalog := []model.Machine{
		{ID: 1, Name: "Laser Cutter", TotalUnits: 1},
		{ID: 2, Name: "3D Printer", TotalUnits: 3},
	}

	testCases := []struct {
		name         string
		date         time.Time
		machineIDs   []int64
		quantity     int
		reservations []model.Reservation
		blocked      []model.BlockedDate
		expected     DayAvailability
	}{
		{
			name:       "Empty inputs leave both blocks free",
			date:       mar18,
			machineIDs: []int64{1},
			quantity:   1,
			expected:   DayAvailability{Morning: true, Afternoon: true},
		},
		{
			name:       "Morning slot blocks morning only",
			date:       mar18,
			machineIDs: []int64{1},
			quantity:   1,
			reservations: []model.Reservation{
				{
					Date:     mar18,
					Status:   model.StatusApproved,
					Machines: []model.Machine{{ID: 1}},
					TimeSlots: []model.TimeSlot{
						{StartTime: at(2024, time.March, 18, 8, 0), EndTime: at(2024, time.March, 18, 12, 0)},
					},
				},
			},
			expected: DayAvailability{Morning: false, Afternoon: true},
		},
		{
			name:       "Reservation without slots occupies the full day",
			date:       mar18,
			machineIDs: []int64{1},
			quantity:   1,
			reservations: []model.Reservation{
				{
					Date:     mar18,
					Status:   model.StatusOngoing,
					Machines: []model.Machine{{ID: 1}},
				},
			},
			expected: DayAvailability{Morning: false, Afternoon: false},
		},
		{
			name:       "Slot straddling lunch blocks both blocks",
			date:       mar18,
			machineIDs: []int64{1},
			quantity:   1,
			reservations: []model.Reservation{
				{
					Date:     mar18,
					Status:   model.StatusApproved,
					Machines: []model.Machine{{ID: 1}},
					TimeSlots: []model.TimeSlot{
						{StartTime: at(2024, time.March, 18, 10, 0), EndTime: at(2024, time.March, 18, 18, 0)},
					},
				},
			},
			expected: DayAvailability{Morning: false, Afternoon: false},
		},
		{
			name:       "Multi-unit machine keeps capacity for second booking",
			date:       mar18,
			machineIDs: []int64{2},
			quantity:   2,
			reservations: []model.Reservation{
				{
					Date:     mar18,
					Status:   model.StatusApproved,
					Machines: []model.Machine{{ID: 2}},
					TimeSlots: []model.TimeSlot{
						{StartTime: at(2024, time.March, 18, 8, 0), EndTime: at(2024, time.March, 18, 17, 0)},
					},
				},
			},
			expected: DayAvailability{Morning: true, Afternoon: true},
		},
		{
			name:       "Quantity above remaining capacity blocks",
			date:       mar18,
			machineIDs: []int64{2},
			quantity:   3,
			reservations: []model.Reservation{
				{
					Date:     mar18,
					Status:   model.StatusApproved,
					Machines: []model.Machine{{ID: 2}},
					TimeSlots: []model.TimeSlot{
						{StartTime: at(2024, time.March, 18, 9, 0), EndTime: at(2024, time.March, 18, 10, 0)},
					},
				},
			},
			expected: DayAvailability{Morning: false, Afternoon: true},
		},
		{
			name:       "Non-occupying statuses are ignored",
			date:       mar18,
			machineIDs: []int64{1},
			quantity:   1,
			reservations: []model.Reservation{
				{Date: mar18, Status: model.StatusRejected, Machines: []model.Machine{{ID: 1}}},
				{Date: mar18, Status: model.StatusCancelled, Machines: []model.Machine{{ID: 1}}},
				{Date: mar18, Status: model.StatusCompleted, Machines: []model.Machine{{ID: 1}}},
			},
			expected: DayAvailability{Morning: true, Afternoon: true},
		},
		{
			name:       "Reservations on other dates or machines are ignored",
			date:       mar18,
			machineIDs: []int64{1},
			quantity:   1,
			reservations: []model.Reservation{
				{Date: day(2024, time.March, 19), Status: model.StatusApproved, Machines: []model.Machine{{ID: 1}}},
				{Date: mar18, Status: model.StatusApproved, Machines: []model.Machine{{ID: 2}}},
			},
			expected: DayAvailability{Morning: true, Afternoon: true},
		},
		{
			name:       "Blocked date zeroes both blocks",
			date:       mar18,
			machineIDs: []int64{1},
			quantity:   1,
			blocked:    []model.BlockedDate{{Date: mar18}},
			expected:   DayAvailability{},
		},
		{
			name:       "Zero-value slot interval contributes nothing",
			date:       mar18,
			machineIDs: []int64{1},
			quantity:   1,
			reservations: []model.Reservation{
				{
					Date:     mar18,
					Status:   model.StatusApproved,
					Machines: []model.Machine{{ID: 1}},
					TimeSlots: []model.TimeSlot{
						{}, // never parsed upstream
						{StartTime: at(2024, time.March, 18, 14, 0), EndTime: at(2024, time.March, 18, 14, 0)},
					},
				},
			},
			expected: DayAvailability{Morning: true, Afternoon: true},
		},
		{
			name:       "Machine missing from catalog counts as one unit",
			date:       mar18,
			machineIDs: []int64{99},
			quantity:   1,
			expected:   DayAvailability{Morning: true, Afternoon: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(tc.date, tc.machineIDs, tc.quantity, tc.reservations, catalog, tc.blocked)
			assert.Equal(t, tc.expected, got)
		})
	}
}

// A reported-free morning must leave at least the requested quantity for
// every hour of the block.
func TestComputeCapacityInvariant(t *testing.T) {
	mar18 := day(2024, time.March, 18)
	catalog := []model.Machine{{ID: 2, TotalUnits: 3}}

	reservations := []model.Reservation{
		{
			Date: mar18, Status: model.StatusApproved,
			Machines: []model.Machine{{ID: 2}},
			TimeSlots: []model.TimeSlot{
				{StartTime: at(2024, time.March, 18, 8, 0), EndTime: at(2024, time.March, 18, 10, 0)},
			},
		},
		{
			Date: mar18, Status: model.StatusPending,
			Machines: []model.Machine{{ID: 2}},
			TimeSlots: []model.TimeSlot{
				{StartTime: at(2024, time.March, 18, 9, 0), EndTime: at(2024, time.March, 18, 11, 0)},
			},
		},
	}

	for qty := 1; qty <= 4; qty++ {
		got := Compute(mar18, []int64{2}, qty, reservations, catalog, nil)

		// Recount occupancy by hand per morning hour.
		worstFree := 3
		for h := MorningStartHour; h < MorningEndHour; h++ {
			occ := 0
			for _, r := range reservations {
				for _, s := range r.TimeSlots {
					if s.StartTime.Hour() <= h && s.EndTime.Hour() > h {
						occ++
					}
				}
			}
			if free := 3 - occ; free < worstFree {
				worstFree = free
			}
		}

		assert.Equal(t, worstFree >= qty, got.Morning, "quantity %d", qty)
	}
}

func TestBlockOverlapHelpers(t *testing.T) {
	assert.True(t, OverlapsMorning(9*60, 10*60))
	assert.False(t, OverlapsMorning(13*60, 14*60))
	assert.True(t, OverlapsAfternoon(12*60+30, 13*60+30))
	assert.False(t, OverlapsAfternoon(8*60, 12*60))
	// Touching a boundary without crossing it is not an overlap.
	assert.False(t, OverlapsMorning(MorningEndMin, AfternoonStartMin))
	assert.False(t, OverlapsAfternoon(MorningStartMin, AfternoonStartMin))
}
