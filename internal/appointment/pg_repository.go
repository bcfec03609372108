package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs; it is what pgxmock
// implements in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgRepository struct {
	db DB
}

func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var email *string

	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Email = email
	return &p, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.Date,
		&a.Time,
		&a.Motive,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

const appointmentColumns = `id, patient_id, medecin_id, date_rendez_vous, heure, motif, statut, created_at, updated_at`

// Interface methods

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) Create(ctx context.Context, appt Appointment) (*Appointment, error) {
	id := appt.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, medecin_id, date_rendez_vous, heure, motif, statut, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING `+appointmentColumns+`
	`, id, appt.PatientID, appt.DoctorID, appt.Date, appt.Time, appt.Motive, appt.Status)

	return scanAppointment(row)
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) Update(ctx context.Context, appt Appointment) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET patient_id = $2,
		    medecin_id = $3,
		    date_rendez_vous = $4,
		    heure = $5,
		    motif = $6,
		    statut = $7,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, appt.ID, appt.PatientID, appt.DoctorID, appt.Date, appt.Time, appt.Motive, appt.Status)

	return scanAppointment(row)
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM appointments
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) List(ctx context.Context, limit, offset int) ([]Appointment, int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY date_rendez_vous, heure
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	items, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM appointments`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *PgRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE medecin_id = $1
		ORDER BY date_rendez_vous, heure
	`, doctorID)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY date_rendez_vous, heure
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func scanCalendarEntries(rows pgx.Rows) ([]CalendarEntry, error) {
	defer rows.Close()

	var result []CalendarEntry
	for rows.Next() {
		var e CalendarEntry
		err := rows.Scan(
			&e.ID,
			&e.Date,
			&e.Time,
			&e.PatientName,
			&e.DoctorName,
			&e.Motive,
			&e.Status,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

const calendarQuery = `
	SELECT a.id,
	       a.date_rendez_vous,
	       a.heure,
	       coalesce(p.first_name || ' ' || p.last_name, 'Unknown patient'),
	       coalesce(u.name, 'Unknown doctor'),
	       a.motif,
	       a.statut
	FROM appointments a
	LEFT JOIN patients p ON p.id = a.patient_id
	LEFT JOIN users u ON u.id = a.medecin_id
`

func (r *PgRepository) ListByMonth(ctx context.Context, year, month int) ([]CalendarEntry, error) {
	// Dates are stored as YYYY-MM-DD text, so a month is a plain prefix.
	prefix := fmt.Sprintf("%04d-%02d-", year, month)

	rows, err := r.db.Query(ctx, calendarQuery+`
		WHERE a.date_rendez_vous LIKE $1 || '%'
		ORDER BY a.date_rendez_vous, a.heure
	`, prefix)
	if err != nil {
		return nil, err
	}
	return scanCalendarEntries(rows)
}

func (r *PgRepository) ListByDate(ctx context.Context, date string) ([]CalendarEntry, error) {
	rows, err := r.db.Query(ctx, calendarQuery+`
		WHERE a.date_rendez_vous = $1
		ORDER BY a.heure
	`, date)
	if err != nil {
		return nil, err
	}
	return scanCalendarEntries(rows)
}

func (r *PgRepository) MarkPastCompleted(ctx context.Context, today string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET statut = $1,
		    updated_at = now()
		WHERE date_rendez_vous < $2
		  AND statut NOT IN ($3, $4)
	`, StatusCompleted, today, StatusCancelled, StatusCompleted)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
