package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// today is a Monday; all date rules below are anchored to it.
var today = time.Date(2025, 3, 3, 14, 30, 0, 0, time.Local)

func TestValidateOccupiedSlotRejected(t *testing.T) {
	records := []Record{
		{ID: "a", DoctorID: "D1", PatientID: "P9", Date: "2025-03-10", Time: "09:00", Status: "programme"},
	}
	idx := BuildIndex(records, "D1", BuildOptions{})

	res := Validate(Input{
		PatientID: "P1",
		Date:      "2025-03-10",
		Time:      "09:00",
		Motive:    "annual check-up visit",
	}, Context{Index: idx, Today: today})

	assert.False(t, res.Time.Valid)
	assert.Contains(t, res.Time.Message, "occupied")
	assert.False(t, res.FormValid)
}

func TestValidateOtherDoctorSlotIsFree(t *testing.T) {
	records := []Record{
		{ID: "a", DoctorID: "D1", PatientID: "P9", Date: "2025-03-10", Time: "09:00", Status: "programme"},
	}
	// Candidate books with D2; D1's occupancy is irrelevant.
	idx := BuildIndex(records, "D2", BuildOptions{})

	res := Validate(Input{
		PatientID: "P1",
		Date:      "2025-03-10",
		Time:      "09:00",
		Motive:    "annual check-up visit",
	}, Context{Index: idx, Today: today})

	assert.True(t, res.Time.Valid)
	assert.True(t, res.FormValid)
}

func TestValidateWeekendRejectedRegardlessOfTime(t *testing.T) {
	for _, date := range []string{"2025-03-08", "2025-03-09"} {
		res := Validate(Input{
			PatientID: "P1",
			Date:      date,
			Time:      "10:00",
			Motive:    "annual check-up visit",
		}, Context{Index: SlotIndex{}, Today: today})

		assert.False(t, res.Date.Valid, date)
		assert.Contains(t, res.Date.Message, "weekend")
		assert.False(t, res.FormValid, date)
	}
}

func TestValidatePastDateRejected(t *testing.T) {
	res := Validate(Input{
		PatientID: "P1",
		Date:      "2025-02-28",
		Time:      "10:00",
		Motive:    "annual check-up visit",
	}, Context{Index: SlotIndex{}, Today: today})

	assert.False(t, res.Date.Valid)
	assert.Contains(t, res.Date.Message, "past")
}

func TestValidateTodayIsNotPast(t *testing.T) {
	res := Validate(Input{
		PatientID: "P1",
		Date:      "2025-03-03",
		Time:      "10:00",
		Motive:    "annual check-up visit",
	}, Context{Index: SlotIndex{}, Today: today})

	assert.True(t, res.Date.Valid)
	assert.True(t, res.FormValid)
}

func TestValidateEditKeepingOriginalSlot(t *testing.T) {
	records := []Record{
		{ID: "x", DoctorID: "D1", PatientID: "P1", Date: "2025-03-10", Time: "09:00", Status: "programme"},
	}
	// Raw index still contains the original key; the original-slot escape
	// hatch must win.
	idx := BuildIndex(records, "D1", BuildOptions{})
	require.True(t, idx.Has("2025-03-10", "09:00"))

	res := Validate(Input{
		PatientID: "P1",
		Date:      "2025-03-10",
		Time:      "09:00",
		Motive:    "follow-up on treatment",
	}, Context{
		Index:        idx,
		OriginalDate: "2025-03-10",
		OriginalTime: "09:00",
		Today:        today,
	})

	assert.True(t, res.Time.Valid)
	assert.True(t, res.FormValid)
}

func TestValidateMissingFields(t *testing.T) {
	res := Validate(Input{}, Context{Index: SlotIndex{}, Today: today})

	assert.False(t, res.Patient.Valid)
	assert.False(t, res.Date.Valid)
	assert.False(t, res.Time.Valid)
	assert.False(t, res.Motive.Valid)
	assert.False(t, res.FormValid)
}

func TestValidateMalformedDate(t *testing.T) {
	res := Validate(Input{
		PatientID: "P1",
		Date:      "10/03/2025",
		Time:      "09:00",
		Motive:    "annual check-up visit",
	}, Context{Index: SlotIndex{}, Today: today})

	assert.False(t, res.Date.Valid)
}

func TestValidateMotiveLength(t *testing.T) {
	tests := []struct {
		name   string
		motive string
		valid  bool
	}{
		{"empty", "", false},
		{"whitespace only", "   \t  ", false},
		{"nine chars", "123456789", false},
		{"exactly ten chars", "1234567890", true},
		{"ten chars after trim", "  1234567890  ", true},
		{"accents count as runes", "médicament", true},
		{"long motive", "persistent migraine headaches", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateMotive(tt.motive)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				assert.NotEmpty(t, res.Message)
			}
		})
	}
}

func TestSameDayConflict(t *testing.T) {
	records := []Record{
		{ID: "a", DoctorID: "D1", PatientID: "P1", Date: "2025-03-10", Time: "09:00", Status: "programme"},
		{ID: "b", DoctorID: "D1", PatientID: "P2", Date: "2025-03-10", Time: "10:00", Status: "programme"},
	}

	// New booking for P1 at a free time that same day is still rejected.
	conflict, found := SameDayConflict(records, "D1", "P1", "2025-03-10", "")
	require.True(t, found)
	assert.Equal(t, "a", conflict.ID)
	assert.Equal(t, "09:00", conflict.Time)

	// Different day, different doctor, or cancelled existing: no conflict.
	_, found = SameDayConflict(records, "D1", "P1", "2025-03-11", "")
	assert.False(t, found)
	_, found = SameDayConflict(records, "D2", "P1", "2025-03-10", "")
	assert.False(t, found)

	cancelled := []Record{
		{ID: "a", DoctorID: "D1", PatientID: "P1", Date: "2025-03-10", Time: "09:00", Status: StatusCancelled},
	}
	_, found = SameDayConflict(cancelled, "D1", "P1", "2025-03-10", "")
	assert.False(t, found)
}

func TestSameDayConflictExcludesEditedAppointment(t *testing.T) {
	records := []Record{
		{ID: "editing", DoctorID: "D1", PatientID: "P1", Date: "2025-03-10", Time: "09:00", Status: "programme"},
	}

	_, found := SameDayConflict(records, "D1", "P1", "2025-03-10", "editing")
	assert.False(t, found)
}
