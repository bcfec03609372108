package availability

import "fmt"

// Working-day defaults for the bookable slot catalogue.
const (
	DefaultStartHour   = 8
	DefaultEndHour     = 18
	DefaultStepMinutes = 15
)

// GenerateSlots enumerates the bookable times of a day, from startHour:00
// through endHour:00 inclusive, in stepMinutes increments. The catalogue is
// cheap to produce and carries no state, so it is always re-derived rather
// than cached. GenerateSlots(8, 18, 15) yields 41 entries.
func GenerateSlots(startHour, endHour, stepMinutes int) []string {
	if stepMinutes <= 0 {
		stepMinutes = DefaultStepMinutes
	}
	if startHour < 0 || endHour < startHour {
		return nil
	}

	slots := make([]string, 0, (endHour-startHour)*60/stepMinutes+1)
	for m := startHour * 60; m <= endHour*60; m += stepMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}
