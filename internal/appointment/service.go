package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mediplan/clinic-scheduler/internal/availability"
	"github.com/mediplan/clinic-scheduler/internal/observability/metrics"
	redisclient "github.com/mediplan/clinic-scheduler/internal/redis"
)

var (
	ErrSlotOccupied       = errors.New("this slot is already occupied")
	ErrPatientDayConflict = errors.New("patient already has an appointment that day")
	ErrSlotBeingBooked    = errors.New("slot is currently being booked, please retry")
)

// ValidationError carries a field-localized, user-correctable message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func validationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

type Service struct {
	repo    Repository
	locker  redisclient.Locker
	metrics *metrics.BookingMetrics
	now     func() time.Time
}

func NewService(repo Repository, locker redisclient.Locker, m *metrics.BookingMetrics) *Service {
	return &Service{
		repo:    repo,
		locker:  locker,
		metrics: m,
		now:     time.Now,
	}
}

type CreateInput struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	Motive    string
}

// Create books a slot for a patient. The client-side validator is only an
// optimistic pre-check; this is the authoritative one. A distributed lock on
// the slot key serializes concurrent requests so that two clients cannot
// both pass the occupancy check.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	if err := s.checkInput(in.PatientID, in.DoctorID, in.Date, in.Time, in.Motive); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetPatientByID(ctx, in.PatientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	var created *Appointment

	err := s.withSlotLock(ctx, in.DoctorID, in.Date, in.Time, func(lockCtx context.Context) error {
		// Re-check occupancy inside the critical section; the index is
		// rebuilt from a fresh snapshot, never patched incrementally.
		existing, err := s.repo.ListByDoctor(lockCtx, in.DoctorID)
		if err != nil {
			return fmt.Errorf("list doctor appointments: %w", err)
		}
		records := toRecords(existing)

		idx := availability.BuildIndex(records, in.DoctorID.String(), availability.BuildOptions{})
		if idx.Has(in.Date, in.Time) {
			s.metrics.ObserveConflict("slot_occupied")
			return ErrSlotOccupied
		}

		if other, found := availability.SameDayConflict(records, in.DoctorID.String(), in.PatientID.String(), in.Date, ""); found {
			s.metrics.ObserveConflict("same_day")
			return fmt.Errorf("%w (at %s)", ErrPatientDayConflict, other.Time)
		}

		appt, err := s.repo.Create(lockCtx, Appointment{
			PatientID: in.PatientID,
			DoctorID:  in.DoctorID,
			Date:      in.Date,
			Time:      in.Time,
			Motive:    in.Motive,
			Status:    StatusScheduled,
		})
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		created = appt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveBooking("create")
	return created, nil
}

type UpdateInput struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Date      string
	Time      string
	Motive    string
	Status    Status
}

// Update edits an existing appointment. The edited record is excluded from
// the occupancy index so keeping the original slot never self-conflicts.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*Appointment, error) {
	existing, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	// Unset fields keep their stored values.
	if in.PatientID == uuid.Nil {
		in.PatientID = existing.PatientID
	}
	if in.DoctorID == uuid.Nil {
		in.DoctorID = existing.DoctorID
	}
	if in.Date == "" {
		in.Date = existing.Date
	}
	if in.Time == "" {
		in.Time = existing.Time
	}
	if in.Motive == "" {
		in.Motive = existing.Motive
	}
	if in.Status == "" {
		in.Status = existing.Status
	}
	if !in.Status.Valid() {
		return nil, validationError("statut", "unknown status")
	}

	if err := s.checkInput(in.PatientID, in.DoctorID, in.Date, in.Time, in.Motive); err != nil {
		return nil, err
	}

	var updated *Appointment

	err = s.withSlotLock(ctx, in.DoctorID, in.Date, in.Time, func(lockCtx context.Context) error {
		all, err := s.repo.ListByDoctor(lockCtx, in.DoctorID)
		if err != nil {
			return fmt.Errorf("list doctor appointments: %w", err)
		}
		records := toRecords(all)
		excludeID := in.ID.String()

		idx := availability.BuildIndex(records, in.DoctorID.String(), availability.BuildOptions{ExcludeID: excludeID})
		if idx.Has(in.Date, in.Time) {
			s.metrics.ObserveConflict("slot_occupied")
			return ErrSlotOccupied
		}

		if other, found := availability.SameDayConflict(records, in.DoctorID.String(), in.PatientID.String(), in.Date, excludeID); found {
			s.metrics.ObserveConflict("same_day")
			return fmt.Errorf("%w (at %s)", ErrPatientDayConflict, other.Time)
		}

		appt, err := s.repo.Update(lockCtx, Appointment{
			ID:        in.ID,
			PatientID: in.PatientID,
			DoctorID:  in.DoctorID,
			Date:      in.Date,
			Time:      in.Time,
			Motive:    in.Motive,
			Status:    in.Status,
		})
		if err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}

		updated = appt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveBooking("update")
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.ObserveBooking("delete")
	return nil
}

// List returns one page of appointments with the pagination envelope.
func (s *Service) List(ctx context.Context, page, size int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 10 // default
	}
	if size > 200 {
		size = 200 // max
	}

	items, total, err := s.repo.List(ctx, size, (page-1)*size)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}

	return &Page{Items: items, Total: total, Page: page, Size: size, Pages: pages}, nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// Availability returns the day's bookable slot catalogue for one doctor
// with per-slot occupancy.
func (s *Service) Availability(ctx context.Context, doctorID uuid.UUID, date string, stepMinutes int) ([]Slot, error) {
	if fr := availability.ValidateDate(date, s.now()); !fr.Valid {
		return nil, validationError("date_rendez_vous", fr.Message)
	}

	existing, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list doctor appointments: %w", err)
	}
	idx := availability.BuildIndex(toRecords(existing), doctorID.String(), availability.BuildOptions{})

	times := availability.GenerateSlots(availability.DefaultStartHour, availability.DefaultEndHour, stepMinutes)
	slots := make([]Slot, 0, len(times))
	for _, t := range times {
		slots = append(slots, Slot{Time: t, Occupied: idx.Has(date, t)})
	}
	return slots, nil
}

func (s *Service) MonthCalendar(ctx context.Context, year, month int) ([]CalendarEntry, error) {
	if month < 1 || month > 12 {
		return nil, validationError("month", "month must be between 1 and 12")
	}
	if year < 1 {
		return nil, validationError("year", "invalid year")
	}
	return s.repo.ListByMonth(ctx, year, month)
}

func (s *Service) DayCalendar(ctx context.Context, date string) ([]CalendarEntry, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, validationError("date", "invalid date, expected YYYY-MM-DD")
	}
	return s.repo.ListByDate(ctx, date)
}

// SweepPastAppointments marks every appointment dated before today as
// completed, unless it was cancelled. Intended to be called by the worker
// periodically.
func (s *Service) SweepPastAppointments(ctx context.Context) (int64, error) {
	today := s.now().Format("2006-01-02")
	count, err := s.repo.MarkPastCompleted(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("mark past appointments completed: %w", err)
	}
	s.metrics.ObserveSwept(count)
	return count, nil
}

func (s *Service) checkInput(patientID, doctorID uuid.UUID, date, timeOfDay, motive string) error {
	if patientID == uuid.Nil {
		return validationError("patient_id", "select a patient")
	}
	if doctorID == uuid.Nil {
		return validationError("medecin_id", "doctor is required")
	}
	if fr := availability.ValidateDate(date, s.now()); !fr.Valid {
		return validationError("date_rendez_vous", fr.Message)
	}
	if timeOfDay == "" {
		return validationError("heure", "select a time")
	}
	if fr := availability.ValidateMotive(motive); !fr.Valid {
		return validationError("motif", fr.Message)
	}
	return nil
}

func (s *Service) withSlotLock(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("%s|%s|%s", doctorID, date, timeOfDay)
	err := s.locker.WithSlotLock(ctx, key, fn)
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		s.metrics.ObserveConflict("lock_contention")
		return ErrSlotBeingBooked
	}
	return err
}
