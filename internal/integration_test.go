package internal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fablab-reservation-backend/internal/model"
	"fablab-reservation-backend/internal/store"
)

// TestReservationLifecycle walks a reservation from creation through approval
// to completion via the status sweep, verifying the database state at each
// step.
func TestReservationLifecycle(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open("file:lifecycle?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(
		&model.Machine{},
		&model.Reservation{},
		&model.TimeSlot{},
		&model.StatusChange{},
		&model.BlockedDate{},
	))

	require.NoError(t, testDB.Create(&model.Machine{ID: 1, Name: "CNC Mill", TotalUnits: 1, IsActive: true}).Error)

	s := store.NewGormStore(testDB)
	ctx := context.Background()

	// A reservation for today, 09:00-11:00.
	date := time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC)
	r := model.Reservation{
		UserName: "Ada",
		Date:     date,
		Machines: []model.Machine{{ID: 1}},
		TimeSlots: []model.TimeSlot{
			{StartTime: date.Add(9 * time.Hour), EndTime: date.Add(11 * time.Hour)},
		},
	}
	require.NoError(t, s.CreateReservation(ctx, &r))
	assert.Equal(t, model.StatusPending, r.Status)

	// Staff approve it.
	updated, machineIDs, err := s.UpdateReservationStatus(ctx, r.PublicID, model.StatusApproved, date.Add(7*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, updated.Status)
	assert.Equal(t, []int64{1}, machineIDs)

	// A sweep before the slot starts changes nothing.
	affected, err := s.SweepStatuses(ctx, date.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, affected)

	// Mid-slot, the reservation goes Ongoing.
	affected, err = s.SweepStatuses(ctx, date.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, affected)

	var current model.Reservation
	require.NoError(t, testDB.First(&current, "public_id = ?", r.PublicID).Error)
	assert.Equal(t, model.StatusOngoing, current.Status)

	// After the slot ends, it completes.
	affected, err = s.SweepStatuses(ctx, date.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, affected)

	require.NoError(t, testDB.First(&current, "public_id = ?", r.PublicID).Error)
	assert.Equal(t, model.StatusCompleted, current.Status)

	// A further sweep is a no-op.
	affected, err = s.SweepStatuses(ctx, date.Add(13*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, affected)

	// Every transition left an audit row.
	var changes []model.StatusChange
	require.NoError(t, testDB.Where("reservation_id = ?", current.ID).Order("id").Find(&changes).Error)
	require.Len(t, changes, 3)
	assert.Equal(t, model.StatusPending, changes[0].FromStatus)
	assert.Equal(t, model.StatusApproved, changes[0].ToStatus)
	assert.Equal(t, model.StatusApproved, changes[1].FromStatus)
	assert.Equal(t, model.StatusOngoing, changes[1].ToStatus)
	assert.Equal(t, model.StatusOngoing, changes[2].FromStatus)
	assert.Equal(t, model.StatusCompleted, changes[2].ToStatus)
}
