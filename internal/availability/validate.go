package availability

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MinMotiveLength is the minimum trimmed length of the appointment motive,
// counted in runes.
const MinMotiveLength = 10

const dateLayout = "2006-01-02"

// Input carries the current form values for one validation pass.
type Input struct {
	PatientID string
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	Motive    string
}

// Context carries everything the validator needs beside the form values.
// Each call is a pure recomputation; the validator holds no state of its own.
type Context struct {
	Index SlotIndex

	// OriginalDate and OriginalTime identify the slot of the appointment
	// being edited. Keeping the original slot is always valid even if the
	// key is present in the index.
	OriginalDate string
	OriginalTime string

	// Today anchors the past-date rule. The zero value means time.Now().
	Today time.Time
}

// FieldResult is the per-field validation verdict shown to the user.
type FieldResult struct {
	Valid   bool
	Message string
}

// Result aggregates the per-field verdicts. FormValid is the conjunction of
// all fields; submission must stay disabled while it is false.
type Result struct {
	Patient   FieldResult
	Date      FieldResult
	Time      FieldResult
	Motive    FieldResult
	FormValid bool
}

// Validate classifies the candidate (patient, date, time, motive) tuple.
// Every field is computed independently; an unavailable slot is a normal
// return value, never an error.
func Validate(in Input, ctx Context) Result {
	res := Result{
		Patient: validatePatient(in.PatientID),
		Date:    ValidateDate(in.Date, ctx.Today),
		Time:    validateTime(in.Date, in.Time, ctx),
		Motive:  ValidateMotive(in.Motive),
	}
	res.FormValid = res.Patient.Valid && res.Date.Valid && res.Time.Valid && res.Motive.Valid
	return res
}

func validatePatient(patientID string) FieldResult {
	if patientID == "" {
		return FieldResult{Message: "select a patient"}
	}
	return FieldResult{Valid: true}
}

// ValidateDate checks the candidate date on its own: present, well formed,
// not strictly before today (time of day ignored), and a weekday.
func ValidateDate(date string, today time.Time) FieldResult {
	if date == "" {
		return FieldResult{Message: "select a date"}
	}

	parsed, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return FieldResult{Message: "invalid date, expected YYYY-MM-DD"}
	}

	if today.IsZero() {
		today = time.Now()
	}
	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
	if parsed.Before(todayStart) {
		return FieldResult{Message: "date cannot be in the past"}
	}

	if wd := parsed.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return FieldResult{Message: "appointments are not available on weekends"}
	}

	return FieldResult{Valid: true}
}

func validateTime(date, timeOfDay string, ctx Context) FieldResult {
	if timeOfDay == "" {
		return FieldResult{Message: "select a time"}
	}

	// Keeping the original slot during an edit never self-conflicts.
	if ctx.OriginalDate != "" && date == ctx.OriginalDate && timeOfDay == ctx.OriginalTime {
		return FieldResult{Valid: true}
	}

	if ctx.Index.Has(date, timeOfDay) {
		return FieldResult{Message: "this slot is already occupied"}
	}

	return FieldResult{Valid: true}
}

// ValidateMotive checks the free-text motive field on its own; the rule is
// shared with consultation forms.
func ValidateMotive(motive string) FieldResult {
	trimmed := strings.TrimSpace(motive)
	if trimmed == "" {
		return FieldResult{Message: "describe the appointment motive"}
	}
	if utf8.RuneCountInString(trimmed) < MinMotiveLength {
		return FieldResult{Message: "motive must be at least 10 characters"}
	}
	return FieldResult{Valid: true}
}

// SameDayConflict reports whether the patient already holds another
// non-cancelled appointment on the given date with the given doctor. The
// scan is independent of the slot index, which is keyed by time rather than
// patient. It is a submission-time check, not a live-typed one.
func SameDayConflict(records []Record, doctorID, patientID, date, excludeID string) (Record, bool) {
	for _, rec := range records {
		if rec.DoctorID != doctorID || rec.PatientID != patientID {
			continue
		}
		if rec.Date != date || rec.Status == StatusCancelled {
			continue
		}
		if excludeID != "" && rec.ID == excludeID {
			continue
		}
		return rec, true
	}
	return Record{}, false
}
