package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mediplan/clinic-scheduler/internal/appointment"
	"github.com/mediplan/clinic-scheduler/internal/availability"
	"github.com/mediplan/clinic-scheduler/internal/user"
)

func listAppointmentsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1)
		size := queryInt(r, "size", 10)

		result, err := svc.List(r.Context(), page, size)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, PaginatedAppointmentsResponse{
			Items: toAppointmentResponses(result.Items),
			Total: result.Total,
			Page:  result.Page,
			Size:  result.Size,
			Pages: result.Pages,
		})
	}
}

func createAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AppointmentPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_medecin_id", "medecin_id must be a valid UUID")
			return
		}

		appt, err := svc.Create(r.Context(), appointment.CreateInput{
			PatientID: patientID,
			DoctorID:  doctorID,
			Date:      req.Date,
			Time:      req.Time,
			Motive:    req.Motive,
		})
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(*appt))
	}
}

func getAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func updateAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		var req AppointmentPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		in := appointment.UpdateInput{
			ID:     id,
			Date:   req.Date,
			Time:   req.Time,
			Motive: req.Motive,
			Status: appointment.Status(req.Status),
		}
		// Patient and doctor ids are optional on update; blank keeps the
		// stored value.
		if req.PatientID != "" {
			patientID, err := uuid.Parse(req.PatientID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
				return
			}
			in.PatientID = patientID
		}
		if req.DoctorID != "" {
			doctorID, err := uuid.Parse(req.DoctorID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_medecin_id", "medecin_id must be a valid UUID")
				return
			}
			in.DoctorID = doctorID
		}

		appt, err := svc.Update(r.Context(), in)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func deleteAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			handleAppointmentError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func listByDoctorHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		appts, err := svc.ListByDoctor(r.Context(), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}

func listByPatientHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		page := queryInt(r, "page", 1)
		size := queryInt(r, "size", 20)
		if page < 1 {
			page = 1
		}

		appts, err := svc.ListByPatient(r.Context(), id, size, (page-1)*size)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}

func availabilityHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(r.URL.Query().Get("medecin_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_medecin_id", "medecin_id must be a valid UUID")
			return
		}

		date := r.URL.Query().Get("date")
		step := queryInt(r, "step", availability.DefaultStepMinutes)

		slots, err := svc.Availability(r.Context(), doctorID, date, step)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		out := make([]SlotResponse, 0, len(slots))
		for _, s := range slots {
			out = append(out, SlotResponse{Time: s.Time, Occupied: s.Occupied})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func monthCalendarHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err1 := strconv.Atoi(chi.URLParam(r, "year"))
		month, err2 := strconv.Atoi(chi.URLParam(r, "month"))
		if err1 != nil || err2 != nil {
			writeError(w, http.StatusBadRequest, "invalid_calendar_path", "year and month must be numbers")
			return
		}

		entries, err := svc.MonthCalendar(r.Context(), year, month)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toCalendarResponses(entries))
	}
}

func dayCalendarHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err1 := strconv.Atoi(chi.URLParam(r, "year"))
		month, err2 := strconv.Atoi(chi.URLParam(r, "month"))
		day, err3 := strconv.Atoi(chi.URLParam(r, "day"))
		if err1 != nil || err2 != nil || err3 != nil {
			writeError(w, http.StatusBadRequest, "invalid_calendar_path", "year, month and day must be numbers")
			return
		}

		date := formatDate(year, month, day)
		entries, err := svc.DayCalendar(r.Context(), date)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toCalendarResponses(entries))
	}
}

func getUserHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		u, err := svc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "user_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(*u))
	}
}

func listUsersHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1)
		size := queryInt(r, "size", 50)
		if page < 1 {
			page = 1
		}

		users, err := svc.List(r.Context(), size, (page-1)*size)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		out := make([]UserResponse, 0, len(users))
		for _, u := range users {
			out = append(out, toUserResponse(u))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	var vErr *appointment.ValidationError

	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "validation_failed", vErr.Error())
	case errors.Is(err, appointment.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrSlotOccupied):
		writeError(w, http.StatusConflict, "slot_occupied", err.Error())
	case errors.Is(err, appointment.ErrPatientDayConflict):
		writeError(w, http.StatusConflict, "patient_day_conflict", err.Error())
	case errors.Is(err, appointment.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func formatDate(year, month, day int) string {
	return strconv.Itoa(year) + "-" + pad2(month) + "-" + pad2(day)
}

func pad2(n int) string {
	if n < 10 && n >= 0 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
