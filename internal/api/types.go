package api

import (
	"github.com/google/uuid"

	"github.com/mediplan/clinic-scheduler/internal/appointment"
	"github.com/mediplan/clinic-scheduler/internal/user"
)

// AppointmentPayload is the create/update request body. Field names follow
// the backend wire contract (French column names).
type AppointmentPayload struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"medecin_id"`
	Date      string `json:"date_rendez_vous"`
	Time      string `json:"heure"`
	Motive    string `json:"motif"`
	Status    string `json:"statut,omitempty"`
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"medecin_id"`
	Date      string    `json:"date_rendez_vous"`
	Time      string    `json:"heure"`
	Motive    string    `json:"motif"`
	Status    string    `json:"statut"`
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		Date:      a.Date,
		Time:      a.Time,
		Motive:    a.Motive,
		Status:    string(a.Status),
	}
}

func toAppointmentResponses(appts []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

type PaginatedAppointmentsResponse struct {
	Items []AppointmentResponse `json:"items"`
	Total int                   `json:"total"`
	Page  int                   `json:"page"`
	Size  int                   `json:"size"`
	Pages int                   `json:"pages"`
}

type SlotResponse struct {
	Time     string `json:"heure"`
	Occupied bool   `json:"occupied"`
}

type CalendarEntryResponse struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date_rendez_vous"`
	Time        string    `json:"heure"`
	PatientName string    `json:"patient_nom"`
	DoctorName  string    `json:"medecin_nom"`
	Motive      string    `json:"motif"`
	Status      string    `json:"statut"`
}

func toCalendarResponses(entries []appointment.CalendarEntry) []CalendarEntryResponse {
	out := make([]CalendarEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, CalendarEntryResponse{
			ID:          e.ID,
			Date:        e.Date,
			Time:        e.Time,
			PatientName: e.PatientName,
			DoctorName:  e.DoctorName,
			Motive:      e.Motive,
			Status:      string(e.Status),
		})
	}
	return out
}

// UserResponse is the public user shape; it never carries credentials.
type UserResponse struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"nom"`
	Email    string     `json:"email"`
	Role     string     `json:"role"`
	DoctorID *uuid.UUID `json:"medecin_id,omitempty"`
}

func toUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
		DoctorID: u.DoctorID,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
