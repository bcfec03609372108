package availability

// Record is the loosely typed view of a stored appointment that the engine
// operates on. It is deliberately decoupled from the persistence model so the
// package stays a pure leaf with no dependencies.
type Record struct {
	ID        string
	PatientID string
	DoctorID  string
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	Status    string
}

// StatusCancelled is the wire value for a cancelled appointment. Cancelled
// appointments never occupy a slot.
const StatusCancelled = "annule"

// SlotKey is the composite (date, time) key. Conflict detection is exact
// string equality on date and time, never instant comparison; dates and
// times are doctor-local wall-clock strings and must not be run through
// timezone-aware arithmetic.
type SlotKey string

func NewSlotKey(date, timeOfDay string) SlotKey {
	return SlotKey(date + "|" + timeOfDay)
}

// SlotIndex is the set of occupied slot keys for one doctor. It is built
// fresh for every validation pass and never mutated afterwards.
type SlotIndex map[SlotKey]struct{}

func (idx SlotIndex) Has(date, timeOfDay string) bool {
	_, ok := idx[NewSlotKey(date, timeOfDay)]
	return ok
}

func (idx SlotIndex) Len() int {
	return len(idx)
}

// BuildOptions tunes index construction.
type BuildOptions struct {
	// ExcludeID drops the appointment being edited from the occupancy set so
	// that keeping its original slot does not self-conflict.
	ExcludeID string
}

// BuildIndex projects a raw appointment collection into the occupied-slot
// index for one doctor. Records for other doctors, cancelled records, the
// excluded record, and records missing a date or time are all skipped;
// malformed input is never an error.
func BuildIndex(records []Record, doctorID string, opts BuildOptions) SlotIndex {
	idx := make(SlotIndex, len(records))
	for _, rec := range records {
		if rec.DoctorID != doctorID {
			continue
		}
		if rec.Status == StatusCancelled {
			continue
		}
		if opts.ExcludeID != "" && rec.ID == opts.ExcludeID {
			continue
		}
		if rec.Date == "" || rec.Time == "" {
			continue
		}
		idx[NewSlotKey(rec.Date, rec.Time)] = struct{}{}
	}
	return idx
}
