package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Opaque booking reference handed to clients.
	Reference string `gorm:"size:36;uniqueIndex;not null" json:"reference"`

	DoctorID uint   `json:"doctor_id"`
	Doctor   Doctor `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"doctor"`

	PatientID uint    `json:"patient_id"`
	Patient   Patient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"patient"`

	// Calendar day of the appointment, normalized to midnight.
	Date time.Time `json:"date"`

	// One of the fixed half-hour labels, e.g. "10:00 AM".
	TimeSlot string `gorm:"size:10;not null" json:"time_slot"`

	Status string `gorm:"size:20;default:'pending'" json:"status"`

	Reason       string `gorm:"size:255;not null" json:"reason"`
	Notes        string `gorm:"size:255" json:"notes"`
	Prescription string `gorm:"size:255" json:"prescription"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
