package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediplan/clinic-scheduler/internal/appointment"
	"github.com/mediplan/clinic-scheduler/internal/user"
)

type fakeAppointmentService struct {
	createErr error
	updateErr error
	getErr    error
	deleteErr error

	appt    appointment.Appointment
	page    appointment.Page
	slots   []appointment.Slot
	entries []appointment.CalendarEntry

	lastCreate appointment.CreateInput
	lastUpdate appointment.UpdateInput
}

func (f *fakeAppointmentService) Create(_ context.Context, in appointment.CreateInput) (*appointment.Appointment, error) {
	f.lastCreate = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	a := f.appt
	return &a, nil
}

func (f *fakeAppointmentService) Update(_ context.Context, in appointment.UpdateInput) (*appointment.Appointment, error) {
	f.lastUpdate = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	a := f.appt
	return &a, nil
}

func (f *fakeAppointmentService) Get(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a := f.appt
	return &a, nil
}

func (f *fakeAppointmentService) Delete(_ context.Context, id uuid.UUID) error {
	return f.deleteErr
}

func (f *fakeAppointmentService) List(_ context.Context, page, size int) (*appointment.Page, error) {
	p := f.page
	return &p, nil
}

func (f *fakeAppointmentService) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]appointment.Appointment, error) {
	return []appointment.Appointment{f.appt}, nil
}

func (f *fakeAppointmentService) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]appointment.Appointment, error) {
	return []appointment.Appointment{f.appt}, nil
}

func (f *fakeAppointmentService) Availability(_ context.Context, doctorID uuid.UUID, date string, stepMinutes int) ([]appointment.Slot, error) {
	return f.slots, nil
}

func (f *fakeAppointmentService) MonthCalendar(_ context.Context, year, month int) ([]appointment.CalendarEntry, error) {
	return f.entries, nil
}

func (f *fakeAppointmentService) DayCalendar(_ context.Context, date string) ([]appointment.CalendarEntry, error) {
	return f.entries, nil
}

type fakeUserService struct {
	user  user.User
	err   error
	users []user.User
}

func (f *fakeUserService) Get(_ context.Context, id uuid.UUID) (*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u := f.user
	return &u, nil
}

func (f *fakeUserService) List(_ context.Context, limit, offset int) ([]user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

func newTestRouter(appts *fakeAppointmentService, users *fakeUserService) http.Handler {
	if users == nil {
		users = &fakeUserService{}
	}
	return NewRouter(RouterConfig{
		Appointments: appts,
		Users:        users,
		Logger:       zerolog.Nop(),
		Env:          "test",
		Version:      "test",
	})
}

func sampleAppointment() appointment.Appointment {
	return appointment.Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Date:      "2025-03-10",
		Time:      "09:30",
		Motive:    "consultation de suivi annuel",
		Status:    appointment.StatusScheduled,
	}
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateAppointmentHandler(t *testing.T) {
	appt := sampleAppointment()

	t.Run("created", func(t *testing.T) {
		svc := &fakeAppointmentService{appt: appt}
		router := newTestRouter(svc, nil)

		rec := doRequest(t, router, http.MethodPost, "/appointments", AppointmentPayload{
			PatientID: appt.PatientID.String(),
			DoctorID:  appt.DoctorID.String(),
			Date:      appt.Date,
			Time:      appt.Time,
			Motive:    appt.Motive,
		})

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, appt.Date, resp["date_rendez_vous"])
		assert.Equal(t, appt.Time, resp["heure"])
		assert.Equal(t, appt.Motive, resp["motif"])
		assert.Equal(t, "programme", resp["statut"])

		assert.Equal(t, appt.PatientID, svc.lastCreate.PatientID)
		assert.Equal(t, appt.DoctorID, svc.lastCreate.DoctorID)
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(&fakeAppointmentService{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad patient id", func(t *testing.T) {
		router := newTestRouter(&fakeAppointmentService{}, nil)

		rec := doRequest(t, router, http.MethodPost, "/appointments", AppointmentPayload{
			PatientID: "not-a-uuid",
			DoctorID:  uuid.NewString(),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_patient_id", resp.Error)
	})

	t.Run("service errors map to status codes", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{&appointment.ValidationError{Field: "motif", Message: "too short"}, http.StatusBadRequest, "validation_failed"},
			{appointment.ErrPatientNotFound, http.StatusNotFound, "patient_not_found"},
			{appointment.ErrSlotOccupied, http.StatusConflict, "slot_occupied"},
			{fmt.Errorf("%w (at 14:00)", appointment.ErrPatientDayConflict), http.StatusConflict, "patient_day_conflict"},
			{appointment.ErrSlotBeingBooked, http.StatusConflict, "slot_being_booked"},
			{errors.New("db down"), http.StatusInternalServerError, "internal_error"},
		}

		for _, tc := range cases {
			t.Run(tc.code, func(t *testing.T) {
				router := newTestRouter(&fakeAppointmentService{createErr: tc.err}, nil)

				rec := doRequest(t, router, http.MethodPost, "/appointments", AppointmentPayload{
					PatientID: uuid.NewString(),
					DoctorID:  uuid.NewString(),
					Date:      "2025-03-10",
					Time:      "09:30",
					Motive:    "consultation de suivi annuel",
				})
				assert.Equal(t, tc.status, rec.Code)

				var resp ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tc.code, resp.Error)
			})
		}
	})
}

func TestGetAppointmentHandler(t *testing.T) {
	appt := sampleAppointment()

	t.Run("found", func(t *testing.T) {
		router := newTestRouter(&fakeAppointmentService{appt: appt}, nil)

		rec := doRequest(t, router, http.MethodGet, "/appointments/"+appt.ID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp AppointmentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, appt.ID, resp.ID)
	})

	t.Run("not found", func(t *testing.T) {
		router := newTestRouter(&fakeAppointmentService{getErr: appointment.ErrAppointmentNotFound}, nil)

		rec := doRequest(t, router, http.MethodGet, "/appointments/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		router := newTestRouter(&fakeAppointmentService{}, nil)

		rec := doRequest(t, router, http.MethodGet, "/appointments/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateAppointmentHandler(t *testing.T) {
	appt := sampleAppointment()
	svc := &fakeAppointmentService{appt: appt}
	router := newTestRouter(svc, nil)

	rec := doRequest(t, router, http.MethodPut, "/appointments/"+appt.ID.String(), AppointmentPayload{
		Status: "confirme",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Unset ids stay nil so the service keeps stored values.
	assert.Equal(t, appt.ID, svc.lastUpdate.ID)
	assert.Equal(t, uuid.Nil, svc.lastUpdate.PatientID)
	assert.Equal(t, appointment.StatusConfirmed, svc.lastUpdate.Status)
}

func TestDeleteAppointmentHandler(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		router := newTestRouter(&fakeAppointmentService{}, nil)

		rec := doRequest(t, router, http.MethodDelete, "/appointments/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		router := newTestRouter(&fakeAppointmentService{deleteErr: appointment.ErrAppointmentNotFound}, nil)

		rec := doRequest(t, router, http.MethodDelete, "/appointments/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListAppointmentsHandler(t *testing.T) {
	appt := sampleAppointment()
	router := newTestRouter(&fakeAppointmentService{
		page: appointment.Page{
			Items: []appointment.Appointment{appt},
			Total: 1,
			Page:  1,
			Size:  10,
			Pages: 1,
		},
	}, nil)

	rec := doRequest(t, router, http.MethodGet, "/appointments?page=1&size=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PaginatedAppointmentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 1, resp.Pages)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, appt.ID, resp.Items[0].ID)
}

func TestAvailabilityHandler(t *testing.T) {
	t.Run("returns the slot catalogue", func(t *testing.T) {
		router := newTestRouter(&fakeAppointmentService{
			slots: []appointment.Slot{
				{Time: "08:00", Occupied: false},
				{Time: "09:30", Occupied: true},
			},
		}, nil)

		rec := doRequest(t, router, http.MethodGet,
			"/appointments/availability?medecin_id="+uuid.NewString()+"&date=2025-03-10", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []SlotResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, "09:30", resp[1].Time)
		assert.True(t, resp[1].Occupied)
	})

	t.Run("missing doctor id", func(t *testing.T) {
		router := newTestRouter(&fakeAppointmentService{}, nil)

		rec := doRequest(t, router, http.MethodGet, "/appointments/availability?date=2025-03-10", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCalendarHandlers(t *testing.T) {
	entry := appointment.CalendarEntry{
		ID:          uuid.New(),
		Date:        "2025-03-10",
		Time:        "09:30",
		PatientName: "Marie Dupont",
		DoctorName:  "Dr. Bernard",
		Motive:      "consultation",
		Status:      appointment.StatusScheduled,
	}
	router := newTestRouter(&fakeAppointmentService{entries: []appointment.CalendarEntry{entry}}, nil)

	t.Run("month view", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/appointments/calendar/2025/3", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []CalendarEntryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "Marie Dupont", resp[0].PatientName)
	})

	t.Run("day view", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/appointments/calendar/2025/3/10", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-numeric month", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/appointments/calendar/2025/march", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUserHandlers(t *testing.T) {
	doctorID := uuid.New()
	u := user.User{
		ID:    uuid.New(),
		Name:  "Sophie Martin",
		Email: "sophie.martin@clinique.fr",
		Role:  user.RoleSecretary,
	}
	u.DoctorID = &doctorID

	t.Run("get user", func(t *testing.T) {
		router := newTestRouter(&fakeAppointmentService{}, &fakeUserService{user: u})

		rec := doRequest(t, router, http.MethodGet, "/users/"+u.ID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Sophie Martin", resp.Name)
		assert.Equal(t, "secretaire", resp.Role)
		require.NotNil(t, resp.DoctorID)
		assert.Equal(t, doctorID, *resp.DoctorID)
	})

	t.Run("unknown user", func(t *testing.T) {
		router := newTestRouter(&fakeAppointmentService{}, &fakeUserService{err: user.ErrUserNotFound})

		rec := doRequest(t, router, http.MethodGet, "/users/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list users", func(t *testing.T) {
		router := newTestRouter(&fakeAppointmentService{}, &fakeUserService{users: []user.User{u}})

		rec := doRequest(t, router, http.MethodGet, "/users", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
	})
}
