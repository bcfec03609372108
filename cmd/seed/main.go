package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediplan/clinic-scheduler/internal/appointment"
	"github.com/mediplan/clinic-scheduler/internal/availability"
	"github.com/mediplan/clinic-scheduler/internal/db"
	"github.com/mediplan/clinic-scheduler/internal/user"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	doctors, err := seedUsers(context.Background(), pool, 10)
	if err != nil {
		log.Fatalf("seed users: %v", err)
	}
	patients, err := seedPatients(context.Background(), pool, 500)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, doctors, patients, 800); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

// seedUsers inserts doctors plus one secretary per doctor and returns the
// doctor ids.
func seedUsers(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d doctors with secretaries", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	doctors := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		doctorID := uuid.New()
		doctors = append(doctors, doctorID)

		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, name, email, role, medecin_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, NULL, now(), now())
		`, doctorID, "Dr. "+gofakeit.Name(), gofakeit.Email(), user.RoleDoctor)
		if err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO users (id, name, email, role, medecin_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, uuid.New(), gofakeit.Name(), gofakeit.Email(), user.RoleSecretary, doctorID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("users seeded")
	return doctors, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d patients", count)

	const batchSize = 250
	patients := make([]uuid.UUID, 0, count)

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			patients = append(patients, id)

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, first_name, last_name, email, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`, id, gofakeit.FirstName(), gofakeit.LastName(), gofakeit.Email())
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return patients, nil
}

// seedAppointments books random free weekday slots over the coming month,
// honoring the same invariants the service enforces: one appointment per
// doctor slot, one per patient per day.
func seedAppointments(ctx context.Context, pool *pgxpool.Pool, doctors, patients []uuid.UUID, count int) error {
	log.Printf("seeding %d appointments", count)

	times := availability.GenerateSlots(availability.DefaultStartHour, availability.DefaultEndHour, availability.DefaultStepMinutes)
	statuses := []appointment.Status{
		appointment.StatusScheduled,
		appointment.StatusScheduled,
		appointment.StatusConfirmed,
		appointment.StatusCancelled,
	}

	takenSlots := make(map[string]struct{})
	patientDays := make(map[string]struct{})

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for attempts := 0; inserted < count && attempts < count*10; attempts++ {
		doctorID := doctors[gofakeit.Number(0, len(doctors)-1)]
		patientID := patients[gofakeit.Number(0, len(patients)-1)]

		date := randomWeekday()
		slot := times[gofakeit.Number(0, len(times)-1)]
		status := statuses[gofakeit.Number(0, len(statuses)-1)]

		slotKey := doctorID.String() + "|" + date + "|" + slot
		dayKey := doctorID.String() + "|" + patientID.String() + "|" + date
		if status != appointment.StatusCancelled {
			if _, exists := takenSlots[slotKey]; exists {
				continue
			}
			if _, exists := patientDays[dayKey]; exists {
				continue
			}
			takenSlots[slotKey] = struct{}{}
			patientDays[dayKey] = struct{}{}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO appointments (id, patient_id, medecin_id, date_rendez_vous, heure, motif, statut, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		`, uuid.New(), patientID, doctorID, date, slot, gofakeit.Sentence(8), status)
		if err != nil {
			return err
		}
		inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("appointments seeded: %d", inserted)
	return nil
}

func randomWeekday() string {
	for {
		d := time.Now().AddDate(0, 0, gofakeit.Number(1, 28))
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			return d.Format("2006-01-02")
		}
	}
}
