package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mediplan/clinic-scheduler/internal/appointment"
	"github.com/mediplan/clinic-scheduler/internal/user"
)

// AppointmentService is the surface the handlers need; satisfied by
// *appointment.Service and by fakes in tests.
type AppointmentService interface {
	Create(ctx context.Context, in appointment.CreateInput) (*appointment.Appointment, error)
	Update(ctx context.Context, in appointment.UpdateInput) (*appointment.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, size int) (*appointment.Page, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]appointment.Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]appointment.Appointment, error)
	Availability(ctx context.Context, doctorID uuid.UUID, date string, stepMinutes int) ([]appointment.Slot, error)
	MonthCalendar(ctx context.Context, year, month int) ([]appointment.CalendarEntry, error)
	DayCalendar(ctx context.Context, date string) ([]appointment.CalendarEntry, error)
}

type UserService interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	List(ctx context.Context, limit, offset int) ([]user.User, error)
}

type RouterConfig struct {
	Appointments AppointmentService
	Users        UserService
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Logger       zerolog.Logger
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health and metrics
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// Appointment endpoints
	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", listAppointmentsHandler(cfg.Appointments))
		r.Post("/", createAppointmentHandler(cfg.Appointments))
		r.Get("/availability", availabilityHandler(cfg.Appointments))
		r.Get("/medecin/{id}", listByDoctorHandler(cfg.Appointments))
		r.Get("/patient/{id}", listByPatientHandler(cfg.Appointments))
		r.Get("/calendar/{year}/{month}", monthCalendarHandler(cfg.Appointments))
		r.Get("/calendar/{year}/{month}/{day}", dayCalendarHandler(cfg.Appointments))
		r.Get("/{id}", getAppointmentHandler(cfg.Appointments))
		r.Put("/{id}", updateAppointmentHandler(cfg.Appointments))
		r.Delete("/{id}", deleteAppointmentHandler(cfg.Appointments))
	})

	// User endpoints (role resolution data only; no credentials exposed)
	r.Get("/users", listUsersHandler(cfg.Users))
	r.Get("/users/{id}", getUserHandler(cfg.Users))

	return r
}
