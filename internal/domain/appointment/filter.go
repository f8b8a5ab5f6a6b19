package appointment

import "time"

// DayFilter selects a doctor's appointments on one calendar day.
// Cancelled appointments are excluded when ActiveOnly is set; a
// cancelled slot is bookable again.
type DayFilter struct {
	DoctorID   uint
	Date       time.Time
	ActiveOnly bool
}

// ConflictFilter identifies the slot a new booking wants to occupy.
type ConflictFilter struct {
	DoctorID uint
	Date     time.Time
	TimeSlot string
}
