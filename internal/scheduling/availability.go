package scheduling

import "time"

// SlotAvailability pairs a grid slot with its availability flag.
type SlotAvailability struct {
	Slot
	Available bool
}

// Availability marks each candidate slot as bookable or not. A slot is
// available iff its instant is strictly after now and no booked instant
// falls in the same hour. Order of the input grid is preserved.
func Availability(slots []Slot, booked []time.Time, now time.Time) []SlotAvailability {
	result := make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		result = append(result, SlotAvailability{
			Slot:      slot,
			Available: slot.At.After(now) && !bookedAt(booked, slot.At),
		})
	}
	return result
}

func bookedAt(booked []time.Time, at time.Time) bool {
	for _, b := range booked {
		// Hour-granularity equality.
		if StartOfHour(b).Equal(at) {
			return true
		}
	}
	return false
}
