package models

import "time"

type Doctor struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name           string `gorm:"size:100;not null" json:"name"`
	Specialization string `gorm:"size:100" json:"specialization"`
	Email          string `gorm:"size:100;uniqueIndex" json:"email"`
	Phone          string `gorm:"size:20" json:"phone"`

	// Display-only summary of the doctor's week, e.g. "Mon-Fri".
	// The slot universe itself is fixed; see domain/appointment.
	AvailableDays string `gorm:"size:100" json:"available_days"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
