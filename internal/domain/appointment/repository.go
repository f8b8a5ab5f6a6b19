package appointment

import (
	"context"
	"time"

	"github.com/brightcare/clinic-scheduler/internal/models"
)

type Repository interface {
	// -------- Doctor --------
	GetDoctorByID(
		ctx context.Context,
		id uint,
	) (*models.Doctor, error)

	// -------- Patient --------
	PatientExists(
		ctx context.Context,
		id uint,
	) (bool, error)

	// -------- Appointment (create / conflict) --------

	// CreateAppointment persists a new appointment. When the slot in
	// ConflictFilter-terms (doctor, date, time slot) is already held by a
	// non-cancelled appointment it returns the slot_conflict business
	// error; the uniqueness is enforced by the storage layer, so two
	// concurrent calls for the same slot cannot both succeed.
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	FindConflicting(
		ctx context.Context,
		f ConflictFilter,
	) (bool, error)

	// -------- Appointment (state change) --------
	GetAppointmentByID(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Availability / listing --------
	ListBookedSlots(
		ctx context.Context,
		f DayFilter,
	) ([]string, error)

	ListAppointmentsForPeriod(
		ctx context.Context,
		doctorID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)
}
