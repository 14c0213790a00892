package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fablab-reservation-backend/internal/availability"
	"fablab-reservation-backend/internal/parse"
)

var (
	bothFree      = availability.DayAvailability{Morning: true, Afternoon: true}
	morningOnly   = availability.DayAvailability{Morning: true, Afternoon: false}
	afternoonOnly = availability.DayAvailability{Morning: false, Afternoon: true}
)

func date(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestSelectorHappyPath(t *testing.T) {
	s := NewSelector(5)
	s.AddDate(date(18), bothFree)

	assert.Equal(t, Unselected, s.StateOf(0))

	require.NoError(t, s.OnChange(FieldStartTime, 0, "09:00 AM"))
	assert.Equal(t, StartChosen, s.StateOf(0))

	require.NoError(t, s.OnChange(FieldEndTime, 0, "11:00 AM"))
	assert.Equal(t, FullySelected, s.StateOf(0))

	sels := s.Selections()
	require.Len(t, sels, 1)
	assert.Equal(t, date(18), sels[0].Date)
	assert.Equal(t, "09:00 AM", sels[0].StartTime)
	assert.Equal(t, "11:00 AM", sels[0].EndTime)
	assert.True(t, s.Complete())
}

func TestSelectorRejectsEndBeforeStart(t *testing.T) {
	s := NewSelector(5)
	s.AddDate(date(18), bothFree)

	require.NoError(t, s.SetStartTime(0, "09:00 AM"))
	err := s.SetEndTime(0, "08:30 AM")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "End time must be after the start time.", verr.Message)
	// The invalid edit is rolled back.
	assert.Equal(t, StartChosen, s.StateOf(0))
	assert.Empty(t, s.Selections())
}

func TestSelectorRejectsEqualEnd(t *testing.T) {
	s := NewSelector(5)
	s.AddDate(date(18), bothFree)

	require.NoError(t, s.SetStartTime(0, "09:00 AM"))
	assert.Error(t, s.SetEndTime(0, "09:00 AM"))
	assert.Equal(t, StartChosen, s.StateOf(0))
}

func TestSelectorResetsEndWhenStartMovesPastIt(t *testing.T) {
	s := NewSelector(5)
	s.AddDate(date(18), bothFree)

	require.NoError(t, s.SetStartTime(0, "09:00 AM"))
	require.NoError(t, s.SetEndTime(0, "10:00 AM"))
	assert.Equal(t, FullySelected, s.StateOf(0))

	// Moving the start past the chosen end clears the end.
	require.NoError(t, s.SetStartTime(0, "10:30 AM"))
	assert.Equal(t, StartChosen, s.StateOf(0))
	assert.Empty(t, s.Selections())

	// The state is re-enterable.
	require.NoError(t, s.SetEndTime(0, "11:30 AM"))
	assert.Equal(t, FullySelected, s.StateOf(0))
}

func TestSelectorRespectsBlockAvailability(t *testing.T) {
	testCases := []struct {
		name      string
		avail     availability.DayAvailability
		start     string
		end       string
		expectErr bool
	}{
		{
			name:  "Morning interval on a morning-only date",
			avail: morningOnly, start: "08:00 AM", end: "11:00 AM",
		},
		{
			name:  "Afternoon interval on an afternoon-only date",
			avail: afternoonOnly, start: "01:00 PM", end: "04:00 PM",
		},
		{
			name:  "Straddling interval on a morning-only date",
			avail: morningOnly, start: "11:00 AM", end: "02:00 PM",
			expectErr: true,
		},
		{
			name:  "Afternoon interval on a morning-only date",
			avail: morningOnly, start: "01:00 PM", end: "03:00 PM",
			expectErr: true,
		},
		{
			name:  "Morning interval on an afternoon-only date",
			avail: afternoonOnly, start: "09:00 AM", end: "10:00 AM",
			expectErr: true,
		},
		{
			name:  "Lunch-hour interval touches neither block",
			avail: availability.DayAvailability{}, start: "12:00 PM", end: "01:00 PM",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSelector(5)
			s.AddDate(date(18), tc.avail)
			require.NoError(t, s.SetStartTime(0, tc.start))

			err := s.SetEndTime(0, tc.end)
			if tc.expectErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.NotEmpty(t, verr.Message)
				assert.Equal(t, StartChosen, s.StateOf(0))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, FullySelected, s.StateOf(0))
			}
		})
	}
}

func TestSelectorDateCap(t *testing.T) {
	s := NewSelector(2)
	s.AddDate(date(18), bothFree)
	s.AddDate(date(19), bothFree)
	// Beyond the cap: silently ignored.
	s.AddDate(date(20), bothFree)
	assert.Equal(t, 2, s.Len())

	// Duplicates are ignored too.
	s.RemoveDate(date(19))
	s.AddDate(date(18), bothFree)
	assert.Equal(t, 1, s.Len())
}

func TestSelectorRemoveDiscardsSelection(t *testing.T) {
	s := NewSelector(5)
	s.AddDate(date(18), bothFree)
	require.NoError(t, s.SetStartTime(0, "09:00 AM"))
	require.NoError(t, s.SetEndTime(0, "10:00 AM"))

	s.RemoveDate(date(18))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Selections())
	assert.False(t, s.Complete())
}

func TestSelectorRejectsMalformedTimes(t *testing.T) {
	s := NewSelector(5)
	s.AddDate(date(18), bothFree)

	assert.Error(t, s.SetStartTime(0, "around nine"))
	assert.Equal(t, Unselected, s.StateOf(0))

	require.NoError(t, s.SetStartTime(0, "09:00 AM"))
	assert.Error(t, s.SetEndTime(0, ""))
	assert.Equal(t, StartChosen, s.StateOf(0))
}

// Every emitted selection is strictly ordered, no matter how the fields were
// edited along the way.
func TestSelectorNeverEmitsUnorderedSelection(t *testing.T) {
	s := NewSelector(5)
	s.AddDate(date(18), bothFree)

	edits := []struct {
		field Field
		value string
	}{
		{FieldStartTime, "09:00 AM"},
		{FieldEndTime, "08:00 AM"},
		{FieldEndTime, "10:00 AM"},
		{FieldStartTime, "11:00 AM"},
		{FieldEndTime, "11:30 AM"},
		{FieldStartTime, "07:00 AM"},
	}

	for _, e := range edits {
		_ = s.OnChange(e.field, 0, e.value) // errors are part of the exercise

		for _, sel := range s.Selections() {
			start, err := parse.ParseClock(sel.StartTime)
			require.NoError(t, err)
			end, err := parse.ParseClock(sel.EndTime)
			require.NoError(t, err)
			assert.Greater(t, end, start)
		}
	}
}
