package scheduling

import (
	"strconv"
	"strings"
	"time"
)

// ServiceHours lists a provider's bookable slot labels, one per clock hour.
// The grid is the same for every provider and every day.
var ServiceHours = []string{
	"08:00",
	"09:00",
	"10:00",
	"11:00",
	"12:00",
	"13:00",
	"14:00",
	"15:00",
	"16:00",
	"17:00",
	"18:00",
	"19:00",
}

// Slot is one candidate booking instant on a provider's daily grid.
type Slot struct {
	Label string
	At    time.Time
}

// DaySlots produces the ordered candidate slots for the calendar day of the
// given instant, one per entry in ServiceHours, each normalized to the top of
// its hour. Deterministic for a given day.
func DaySlots(day time.Time) []Slot {
	slots := make([]Slot, 0, len(ServiceHours))
	for _, label := range ServiceHours {
		hour, minute := parseLabel(label)
		at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
		slots = append(slots, Slot{Label: label, At: StartOfHour(at)})
	}
	return slots
}

func parseLabel(label string) (hour, minute int) {
	parts := strings.SplitN(label, ":", 2)
	hour, _ = strconv.Atoi(parts[0])
	if len(parts) == 2 {
		minute, _ = strconv.Atoi(parts[1])
	}
	return hour, minute
}
