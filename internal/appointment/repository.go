package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	Create(ctx context.Context, appt Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, appt Appointment) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns one page plus the total row count.
	List(ctx context.Context, limit, offset int) ([]Appointment, int, error)

	// ListByDoctor feeds the occupied-slot index and conflict checks; it
	// returns the doctor's full non-deleted calendar.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error)

	// Calendar views joined with patient and doctor display names.
	ListByMonth(ctx context.Context, year, month int) ([]CalendarEntry, error)
	ListByDate(ctx context.Context, date string) ([]CalendarEntry, error)

	// Status sweeper: mark every non-cancelled, non-completed appointment
	// dated strictly before today as completed.
	MarkPastCompleted(ctx context.Context, today string) (int64, error)
}
