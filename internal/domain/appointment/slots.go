package appointment

import "time"

// The clinic books half-hour slots between 09:00 AM and 05:00 PM.
// The universe is fixed and ordered; availability is always a subset
// of it in this order.
var slotUniverse = []string{
	"09:00 AM", "09:30 AM",
	"10:00 AM", "10:30 AM",
	"11:00 AM", "11:30 AM",
	"12:00 PM", "12:30 PM",
	"01:00 PM", "01:30 PM",
	"02:00 PM", "02:30 PM",
	"03:00 PM", "03:30 PM",
	"04:00 PM", "04:30 PM",
	"05:00 PM",
}

// SlotUniverse returns a copy of the full ordered slot list.
func SlotUniverse() []string {
	out := make([]string, len(slotUniverse))
	copy(out, slotUniverse)
	return out
}

// IsValidSlot reports whether label is one of the bookable slots.
func IsValidSlot(label string) bool {
	for _, s := range slotUniverse {
		if s == label {
			return true
		}
	}
	return false
}

// AvailableSlots subtracts the booked labels from the universe,
// preserving universe order. Unknown labels in booked are ignored.
func AvailableSlots(booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}

	out := make([]string, 0, len(slotUniverse))
	for _, s := range slotUniverse {
		if _, ok := taken[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// NormalizeDate truncates t to midnight in its own location. Appointment
// dates are calendar days; time-of-day never participates in comparisons.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayRange returns the half-open interval [date@00:00, date+1d@00:00).
func DayRange(date time.Time) (time.Time, time.Time) {
	start := NormalizeDate(date)
	return start, start.Add(24 * time.Hour)
}
