package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fablab-reservation-backend/internal/availability"
	"fablab-reservation-backend/internal/model"
	"fablab-reservation-backend/internal/parse"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB
	ListMachines(ctx context.Context) ([]model.Machine, error)
	ListReservations(ctx context.Context, from, to time.Time) ([]model.Reservation, error)
	CreateReservation(ctx context.Context, r *model.Reservation) error
	// UpdateReservationStatus transitions the reservation and returns the
	// updated record plus the IDs of machines whose subscribers should be
	// notified.
	UpdateReservationStatus(ctx context.Context, publicID, newStatus string, now time.Time) (*model.Reservation, []int64, error)
	// SweepStatuses advances Approved reservations to Ongoing and finished
	// ones to Completed, returning affected machine IDs.
	SweepStatuses(ctx context.Context, now time.Time) ([]int64, error)
	ListBlockedDates(ctx context.Context) ([]model.BlockedDate, error)
	AddBlockedDate(ctx context.Context, date time.Time) error
	RemoveBlockedDate(ctx context.Context, date time.Time) error
}

// allowedTransitions is the reservation status transition table. Completed,
// Rejected and Cancelled are terminal.
var allowedTransitions = map[string][]string{
	model.StatusPending:  {model.StatusApproved, model.StatusRejected, model.StatusCancelled},
	model.StatusApproved: {model.StatusOngoing, model.StatusCompleted, model.StatusCancelled},
	model.StatusOngoing:  {model.StatusCompleted, model.StatusCancelled},
}

func transitionAllowed(from, to string) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) ListMachines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	if err := s.db.WithContext(ctx).Order("name").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	return machines, nil
}

func (s *gormStore) ListReservations(ctx context.Context, from, to time.Time) ([]model.Reservation, error) {
	q := s.db.WithContext(ctx).Preload("Machines").Preload("TimeSlots")
	if !from.IsZero() {
		q = q.Where("date >= ?", parse.DateOnly(from))
	}
	if !to.IsZero() {
		q = q.Where("date <= ?", parse.DateOnly(to))
	}

	var reservations []model.Reservation
	if err := q.Order("date").Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

// CreateReservation persists a reservation with its slots and machine
// associations in one transaction. Machine rows themselves are never created
// here; only the join rows are.
func (s *gormStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	if r.PublicID == "" {
		r.PublicID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = model.StatusPending
	}
	if r.Quantity <= 0 {
		r.Quantity = 1
	}
	r.Date = parse.DateOnly(r.Date)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Machines.*").Create(r).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return nil
	})
}

func (s *gormStore) UpdateReservationStatus(ctx context.Context, publicID, newStatus string, now time.Time) (*model.Reservation, []int64, error) {
	var updated model.Reservation
	var machineIDs []int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r model.Reservation
		if err := tx.Preload("Machines").First(&r, "public_id = ?", publicID).Error; err != nil {
			return err
		}

		if !transitionAllowed(r.Status, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, newStatus)
		}

		change := model.StatusChange{
			ReservationID: r.ID,
			FromStatus:    r.Status,
			ToStatus:      newStatus,
			ChangedAt:     now,
		}
		if err := tx.Create(&change).Error; err != nil {
			return fmt.Errorf("failed to record status change for reservation %s: %w", publicID, err)
		}

		if err := tx.Model(&r).Update("status", newStatus).Error; err != nil {
			return fmt.Errorf("failed to update status for reservation %s: %w", publicID, err)
		}

		r.Status = newStatus
		updated = r
		for _, m := range r.Machines {
			machineIDs = append(machineIDs, m.ID)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &updated, machineIDs, nil
}

// ErrInvalidTransition is returned when a status change is not in the
// transition table.
var ErrInvalidTransition = fmt.Errorf("invalid status transition")

// SweepStatuses walks live reservations and advances them past slot
// boundaries: Approved becomes Ongoing once a slot has started, and Approved
// or Ongoing become Completed once every slot has ended. A reservation
// without slots spans the whole business window of its date.
func (s *gormStore) SweepStatuses(ctx context.Context, now time.Time) ([]int64, error) {
	var live []model.Reservation
	if err := s.db.WithContext(ctx).
		Preload("Machines").Preload("TimeSlots").
		Where("status IN ?", []string{model.StatusApproved, model.StatusOngoing}).
		Where("date <= ?", parse.DateOnly(now)).
		Find(&live).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch live reservations: %w", err)
	}

	var affected []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range live {
			r := &live[i]
			started, ended := slotBounds(r, now)

			var next string
			switch {
			case ended:
				next = model.StatusCompleted
			case started && r.Status == model.StatusApproved:
				next = model.StatusOngoing
			default:
				continue
			}

			change := model.StatusChange{
				ReservationID: r.ID,
				FromStatus:    r.Status,
				ToStatus:      next,
				ChangedAt:     now,
			}
			if err := tx.Create(&change).Error; err != nil {
				return fmt.Errorf("failed to record sweep transition for reservation %d: %w", r.ID, err)
			}
			if err := tx.Model(r).Update("status", next).Error; err != nil {
				return fmt.Errorf("failed to sweep reservation %d: %w", r.ID, err)
			}
			for _, m := range r.Machines {
				affected = append(affected, m.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return affected, nil
}

// slotBounds reports whether any slot of r has started and whether all have
// ended, as of now.
func slotBounds(r *model.Reservation, now time.Time) (started, ended bool) {
	if len(r.TimeSlots) == 0 {
		dayStart := r.Date.Add(time.Duration(availability.MorningStartHour) * time.Hour)
		dayEnd := r.Date.Add(time.Duration(availability.AfternoonEndHour) * time.Hour)
		return !now.Before(dayStart), now.After(dayEnd)
	}

	ended = true
	for _, slot := range r.TimeSlots {
		if !now.Before(slot.StartTime) {
			started = true
		}
		if now.Before(slot.EndTime) {
			ended = false
		}
	}
	return started, ended
}

func (s *gormStore) ListBlockedDates(ctx context.Context) ([]model.BlockedDate, error) {
	var dates []model.BlockedDate
	if err := s.db.WithContext(ctx).Order("date").Find(&dates).Error; err != nil {
		return nil, fmt.Errorf("failed to list blocked dates: %w", err)
	}
	return dates, nil
}

func (s *gormStore) AddBlockedDate(ctx context.Context, date time.Time) error {
	blocked := model.BlockedDate{Date: parse.DateOnly(date)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoNothing: true,
	}).Create(&blocked).Error
}

func (s *gormStore) RemoveBlockedDate(ctx context.Context, date time.Time) error {
	return s.db.WithContext(ctx).
		Where("date = ?", parse.DateOnly(date)).
		Delete(&model.BlockedDate{}).Error
}
