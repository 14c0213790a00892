package model

import "time"

// Reservation lifecycle statuses.
const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusOngoing   = "Ongoing"
	StatusCompleted = "Completed"
	StatusRejected  = "Rejected"
	StatusCancelled = "Cancelled"
)

// OccupyingStatuses are the statuses that count toward machine occupancy.
// Pending is included so an unapproved queue cannot oversell a machine.
var OccupyingStatuses = []string{StatusPending, StatusApproved, StatusOngoing}

// Reservation represents one user booking for a single calendar date.
type Reservation struct {
	ID        int64  `gorm:"primaryKey" json:"-"`
	PublicID  string `gorm:"uniqueIndex;size:36;not null" json:"id"`
	UserName  string `gorm:"size:256;not null" json:"userName"`
	UserEmail string `gorm:"size:256" json:"userEmail"`
	// Date is the calendar date the reservation occupies, normalized to
	// midnight UTC.
	Date      time.Time `gorm:"index;not null" json:"date"`
	Status    string    `gorm:"size:16;not null;index" json:"status"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`

	// Associations
	Machines  []Machine  `gorm:"many2many:reservation_machines;" json:"machines"`
	TimeSlots []TimeSlot `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE" json:"timeSlots"`
}

// IsOccupying reports whether the reservation counts toward occupancy.
func (r *Reservation) IsOccupying() bool {
	for _, s := range OccupyingStatuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

// TimeSlot is one occupied interval within a reservation's date. Slots of the
// same reservation are non-overlapping and fall within that date.
type TimeSlot struct {
	ID            int64     `gorm:"primaryKey" json:"-"`
	ReservationID int64     `gorm:"index;not null" json:"-"`
	StartTime     time.Time `gorm:"not null" json:"startTime"`
	EndTime       time.Time `gorm:"not null" json:"endTime"`
}

// StatusChange is an audit record written on every status transition.
type StatusChange struct {
	ID            int64     `gorm:"autoIncrement;primaryKey"`
	ReservationID int64     `gorm:"index;not null"`
	FromStatus    string    `gorm:"size:16;not null"`
	ToStatus      string    `gorm:"size:16;not null"`
	ChangedAt     time.Time `gorm:"not null"`
}

// BlockedDate marks a calendar date as globally unavailable. Blocking applies
// to every machine; there is no per-machine blocking.
type BlockedDate struct {
	ID   int64     `gorm:"primaryKey" json:"id"`
	Date time.Time `gorm:"uniqueIndex;not null" json:"date"`
}
