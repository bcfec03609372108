package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildIndexScopesToDoctor(t *testing.T) {
	records := []Record{
		{ID: "a", DoctorID: "D1", Date: "2025-03-10", Time: "09:00", Status: "programme"},
		{ID: "b", DoctorID: "D2", Date: "2025-03-10", Time: "09:00", Status: "programme"},
		{ID: "c", DoctorID: "D1", Date: "2025-03-11", Time: "10:30", Status: "confirme"},
	}

	idx := BuildIndex(records, "D1", BuildOptions{})

	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.Has("2025-03-10", "09:00"))
	assert.True(t, idx.Has("2025-03-11", "10:30"))
	assert.False(t, idx.Has("2025-03-10", "10:30"))
}

func TestBuildIndexDistinctSlotsStayDistinct(t *testing.T) {
	// Two appointments of the same doctor only share a key when both date
	// and time coincide.
	records := []Record{
		{ID: "a", DoctorID: "D1", Date: "2025-03-10", Time: "09:00", Status: "programme"},
		{ID: "b", DoctorID: "D1", Date: "2025-03-10", Time: "09:15", Status: "programme"},
		{ID: "c", DoctorID: "D1", Date: "2025-03-11", Time: "09:00", Status: "programme"},
	}

	idx := BuildIndex(records, "D1", BuildOptions{})

	assert.Equal(t, 3, idx.Len())
}

func TestBuildIndexCoincidingSlotsCoalesce(t *testing.T) {
	records := []Record{
		{ID: "a", DoctorID: "D1", Date: "2025-03-10", Time: "09:00", Status: "programme"},
		{ID: "b", DoctorID: "D1", Date: "2025-03-10", Time: "09:00", Status: "confirme"},
	}

	idx := BuildIndex(records, "D1", BuildOptions{})

	assert.Equal(t, 1, idx.Len())
	assert.True(t, idx.Has("2025-03-10", "09:00"))
}

func TestBuildIndexCancelledNeverOccupies(t *testing.T) {
	records := []Record{
		{ID: "a", DoctorID: "D1", Date: "2025-03-10", Time: "09:00", Status: StatusCancelled},
		{ID: "b", DoctorID: "D1", Date: "2025-03-12", Time: "14:00", Status: StatusCancelled},
	}

	idx := BuildIndex(records, "D1", BuildOptions{})

	assert.Equal(t, 0, idx.Len())
}

func TestBuildIndexExcludesEditedAppointment(t *testing.T) {
	records := []Record{
		{ID: "editing", DoctorID: "D1", Date: "2025-03-10", Time: "09:00", Status: "programme"},
		{ID: "other", DoctorID: "D1", Date: "2025-03-10", Time: "11:00", Status: "programme"},
	}

	idx := BuildIndex(records, "D1", BuildOptions{ExcludeID: "editing"})

	assert.False(t, idx.Has("2025-03-10", "09:00"))
	assert.True(t, idx.Has("2025-03-10", "11:00"))
}

func TestBuildIndexSkipsMalformedRecords(t *testing.T) {
	records := []Record{
		{ID: "a", DoctorID: "D1", Time: "09:00", Status: "programme"},
		{ID: "b", DoctorID: "D1", Date: "2025-03-10", Status: "programme"},
		{ID: "c", DoctorID: "D1", Date: "2025-03-10", Time: "10:00", Status: "programme"},
	}

	idx := BuildIndex(records, "D1", BuildOptions{})

	assert.Equal(t, 1, idx.Len())
	assert.True(t, idx.Has("2025-03-10", "10:00"))
}

func TestBuildIndexDeterministic(t *testing.T) {
	records := []Record{
		{ID: "a", DoctorID: "D1", Date: "2025-03-10", Time: "09:00", Status: "programme"},
		{ID: "b", DoctorID: "D1", Date: "2025-03-10", Time: "09:15", Status: "programme"},
	}

	first := BuildIndex(records, "D1", BuildOptions{})
	second := BuildIndex(records, "D1", BuildOptions{})

	assert.Equal(t, first, second)
}
