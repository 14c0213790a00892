// Package selection holds the per-date time picker state for a reservation
// request. It enforces that a chosen start/end pair is ordered and stays out
// of business blocks the availability computation reported as full.
package selection

import (
	"time"

	"fablab-reservation-backend/internal/availability"
	"fablab-reservation-backend/internal/parse"
)

// State describes how far a single date's time selection has progressed.
type State int

const (
	Unselected State = iota
	StartChosen
	FullySelected
)

// Field identifies which time field an edit targets.
type Field string

const (
	FieldStartTime Field = "startTime"
	FieldEndTime   Field = "endTime"
)

// DayTimeSelection is a completed start/end choice for one date.
type DayTimeSelection struct {
	Date      time.Time `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
}

// ValidationError carries a message meant for the user, not the logs.
// Conflict marks rejections caused by exhausted availability rather than a
// malformed or unordered input.
type ValidationError struct {
	Message  string
	Conflict bool
}

func (e *ValidationError) Error() string {
	return e.Message
}

type daySelection struct {
	date     time.Time
	avail    availability.DayAvailability
	startMin int // -1 when unset
	endMin   int // -1 when unset
}

// Selector holds one in-progress time selection per candidate date. It is not
// safe for concurrent use; every instance belongs to a single request flow.
type Selector struct {
	maxDates int
	days     []daySelection
}

// NewSelector creates a selector capped at maxDates candidate dates.
func NewSelector(maxDates int) *Selector {
	if maxDates <= 0 {
		maxDates = 5
	}
	return &Selector{maxDates: maxDates}
}

// AddDate appends a candidate date with its computed availability. Adding a
// date beyond the cap, or a date already present, is silently ignored.
func (s *Selector) AddDate(date time.Time, avail availability.DayAvailability) {
	if len(s.days) >= s.maxDates {
		return
	}
	day := parse.DateOnly(date)
	for _, d := range s.days {
		if d.date.Equal(day) {
			return
		}
	}
	s.days = append(s.days, daySelection{date: day, avail: avail, startMin: -1, endMin: -1})
}

// RemoveDate discards the candidate date and whatever was selected for it.
func (s *Selector) RemoveDate(date time.Time) {
	day := parse.DateOnly(date)
	for i, d := range s.days {
		if d.date.Equal(day) {
			s.days = append(s.days[:i], s.days[i+1:]...)
			return
		}
	}
}

// Len returns the number of candidate dates.
func (s *Selector) Len() int {
	return len(s.days)
}

// StateOf returns the selection state for the date at index.
func (s *Selector) StateOf(index int) State {
	if index < 0 || index >= len(s.days) {
		return Unselected
	}
	d := s.days[index]
	switch {
	case d.startMin >= 0 && d.endMin >= 0:
		return FullySelected
	case d.startMin >= 0:
		return StartChosen
	default:
		return Unselected
	}
}

// OnChange applies a time-field edit for the date at index, mirroring the UI
// callback shape.
func (s *Selector) OnChange(field Field, index int, value string) error {
	switch field {
	case FieldStartTime:
		return s.SetStartTime(index, value)
	case FieldEndTime:
		return s.SetEndTime(index, value)
	}
	return &ValidationError{Message: "unknown time field"}
}

// SetStartTime records the start time for the date at index. If an end time
// was already chosen and no longer follows the new start, the end time is
// cleared and the date reverts to StartChosen.
func (s *Selector) SetStartTime(index int, value string) error {
	if index < 0 || index >= len(s.days) {
		return &ValidationError{Message: "no date selected at this position"}
	}

	startMin, err := parse.ParseClock(value)
	if err != nil {
		return &ValidationError{Message: "Please enter a valid time."}
	}

	d := &s.days[index]
	d.startMin = startMin
	if d.endMin >= 0 && d.endMin <= startMin {
		d.endMin = -1
	}
	return nil
}

// SetEndTime records the end time for the date at index. The edit is rolled
// back and a user-facing error returned when the end does not follow the
// start, or when the resulting interval reaches into a block reported
// unavailable for that date.
func (s *Selector) SetEndTime(index int, value string) error {
	if index < 0 || index >= len(s.days) {
		return &ValidationError{Message: "no date selected at this position"}
	}

	d := &s.days[index]
	if d.startMin < 0 {
		return &ValidationError{Message: "Please select a start time first."}
	}

	endMin, err := parse.ParseClock(value)
	if err != nil {
		return &ValidationError{Message: "Please enter a valid time."}
	}

	if endMin <= d.startMin {
		return &ValidationError{Message: "End time must be after the start time."}
	}

	if !d.avail.Morning && availability.OverlapsMorning(d.startMin, endMin) {
		return &ValidationError{Message: "The morning block is fully booked on this date.", Conflict: true}
	}
	if !d.avail.Afternoon && availability.OverlapsAfternoon(d.startMin, endMin) {
		return &ValidationError{Message: "The afternoon block is fully booked on this date.", Conflict: true}
	}

	d.endMin = endMin
	return nil
}

// Complete reports whether every candidate date is fully selected.
func (s *Selector) Complete() bool {
	if len(s.days) == 0 {
		return false
	}
	for i := range s.days {
		if s.StateOf(i) != FullySelected {
			return false
		}
	}
	return true
}

// Selections returns the fully selected dates. Every returned entry has an
// end time strictly after its start time.
func (s *Selector) Selections() []DayTimeSelection {
	var out []DayTimeSelection
	for i, d := range s.days {
		if s.StateOf(i) != FullySelected {
			continue
		}
		out = append(out, DayTimeSelection{
			Date:      d.date,
			StartTime: parse.FormatClock(d.startMin),
			EndTime:   parse.FormatClock(d.endMin),
		})
	}
	return out
}
