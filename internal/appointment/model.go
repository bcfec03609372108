package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/mediplan/clinic-scheduler/internal/availability"
)

type Status string

const (
	StatusScheduled Status = "programme"
	StatusConfirmed Status = "confirme"
	StatusCancelled Status = "annule"
	StatusCompleted Status = "termine"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Appointment ties a patient to a doctor at one slot. Date and Time are
// doctor-local wall-clock strings and are compared by string equality
// everywhere; they are never converted to absolute instants.
type Appointment struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	Motive    string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AvailabilityRecord projects the appointment into the engine's input shape.
func (a Appointment) AvailabilityRecord() availability.Record {
	return availability.Record{
		ID:        a.ID.String(),
		PatientID: a.PatientID.String(),
		DoctorID:  a.DoctorID.String(),
		Date:      a.Date,
		Time:      a.Time,
		Status:    string(a.Status),
	}
}

func toRecords(appts []Appointment) []availability.Record {
	records := make([]availability.Record, 0, len(appts))
	for _, a := range appts {
		records = append(records, a.AvailabilityRecord())
	}
	return records
}

type Patient struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// CalendarEntry is an appointment joined with display names for calendar
// month and day views.
type CalendarEntry struct {
	ID          uuid.UUID
	Date        string
	Time        string
	PatientName string
	DoctorName  string
	Motive      string
	Status      Status
}

// Page is the paginated list envelope.
type Page struct {
	Items []Appointment
	Total int
	Page  int
	Size  int
	Pages int
}

// Slot is one entry of the day catalogue returned by the availability query.
type Slot struct {
	Time     string
	Occupied bool
}
