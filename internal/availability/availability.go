package availability

import (
	"time"

	"fablab-reservation-backend/internal/model"
	"fablab-reservation-backend/internal/parse"
)

// Business-hour block boundaries, in hours of the day. These are the single
// source of truth for both the aggregator and the time-slot selector.
const (
	MorningStartHour   = 8
	MorningEndHour     = 12 // exclusive
	AfternoonStartHour = 13
	AfternoonEndHour   = 17 // inclusive
)

// Block boundaries in minutes since midnight, for callers working on the
// minute-of-day scale.
const (
	MorningStartMin   = MorningStartHour * 60
	MorningEndMin     = MorningEndHour * 60
	AfternoonStartMin = AfternoonStartHour * 60
	AfternoonEndMin   = AfternoonEndHour * 60
)

// DayAvailability reports whether enough capacity remains in each business
// block of a given date. It is a pure function of its inputs and is never
// mutated in place.
type DayAvailability struct {
	Morning   bool `json:"morning"`
	Afternoon bool `json:"afternoon"`
}

// Compute returns the remaining availability for the given date and machine
// set. Occupancy is tallied per hour across the business window; any overlap
// within an hour occupies the whole hour. That coarse granularity is the
// intended conservative policy, not an approximation to refine.
//
// Inputs are read-only snapshots. Missing fields never cause an error: a
// reservation without time slots occupies the full day, a slot with a zero or
// inverted interval contributes nothing, and machines absent from the catalog
// count as a single unit.
func Compute(date time.Time, machineIDs []int64, quantity int, reservations []model.Reservation, catalog []model.Machine, blocked []model.BlockedDate) DayAvailability {
	if quantity <= 0 {
		quantity = 1
	}

	day := parse.DateOnly(date)
	for _, b := range blocked {
		if parse.DateOnly(b.Date).Equal(day) {
			return DayAvailability{}
		}
	}

	requested := make(map[int64]bool, len(machineIDs))
	for _, id := range machineIDs {
		requested[id] = true
	}

	totalCapacity := 0
	seen := make(map[int64]bool, len(machineIDs))
	for _, m := range catalog {
		if !requested[m.ID] {
			continue
		}
		units := m.TotalUnits
		if units <= 0 {
			units = 1
		}
		totalCapacity += units
		seen[m.ID] = true
	}
	for _, id := range machineIDs {
		if !seen[id] {
			totalCapacity++
		}
	}

	// Hourly occupancy across the business window, indexed by hour of day.
	var occupancy [24]int
	for i := range reservations {
		r := &reservations[i]
		if !r.IsOccupying() || !parse.DateOnly(r.Date).Equal(day) {
			continue
		}

		count := 0
		for _, m := range r.Machines {
			if requested[m.ID] {
				count++
			}
		}
		if count == 0 {
			continue
		}

		if len(r.TimeSlots) == 0 {
			// No slots recorded: the reservation holds the whole day.
			for h := MorningStartHour; h <= AfternoonEndHour; h++ {
				occupancy[h] += count
			}
			continue
		}

		for _, slot := range r.TimeSlots {
			if slot.StartTime.IsZero() || slot.EndTime.IsZero() {
				continue
			}
			startMin := parse.MinuteOfDay(slot.StartTime)
			endMin := parse.MinuteOfDay(slot.EndTime)
			if endMin <= startMin {
				continue
			}
			for h := MorningStartHour; h <= AfternoonEndHour; h++ {
				if startMin < (h+1)*60 && endMin > h*60 {
					occupancy[h] += count
				}
			}
		}
	}

	avail := DayAvailability{Morning: true, Afternoon: true}
	for h := MorningStartHour; h < MorningEndHour; h++ {
		if totalCapacity-occupancy[h] < quantity {
			avail.Morning = false
			break
		}
	}
	for h := AfternoonStartHour; h <= AfternoonEndHour; h++ {
		if totalCapacity-occupancy[h] < quantity {
			avail.Afternoon = false
			break
		}
	}
	return avail
}

// OverlapsMorning reports whether the [startMin, endMin) interval touches the
// morning block.
func OverlapsMorning(startMin, endMin int) bool {
	return startMin < MorningEndMin && endMin > MorningStartMin
}

// OverlapsAfternoon reports whether the [startMin, endMin) interval touches
// the afternoon block.
func OverlapsAfternoon(startMin, endMin int) bool {
	return startMin < AfternoonEndMin && endMin > AfternoonStartMin
}
