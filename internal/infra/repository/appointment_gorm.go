package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/brightcare/clinic-scheduler/internal/domain/appointment"
	"github.com/brightcare/clinic-scheduler/internal/httperr"
	"github.com/brightcare/clinic-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Doctor
// --------------------------------------------------

func (r *AppointmentGormRepository) GetDoctorByID(
	ctx context.Context,
	id uint,
) (*models.Doctor, error) {

	var doctor models.Doctor
	if err := r.db.WithContext(ctx).First(&doctor, id).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}

// --------------------------------------------------
// Patient
// --------------------------------------------------

func (r *AppointmentGormRepository) PatientExists(
	ctx context.Context,
	id uint,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Patient{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// --------------------------------------------------
// Appointment (create / conflict)
// --------------------------------------------------

// conflictScope narrows a query to the non-cancelled appointments
// holding the doctor/date/slot triple.
func conflictScope(q *gorm.DB, doctorID uint, date time.Time, slot string) *gorm.DB {
	return q.Model(&models.Appointment{}).
		Where(
			"doctor_id = ? AND date = ? AND time_slot = ? AND status <> ?",
			doctorID,
			date,
			slot,
			string(domain.StatusCancelled),
		)
}

// lockConflictingIDs takes a FOR UPDATE lock on the rows occupying the
// slot. The lock rides a plain id select because Postgres refuses
// FOR UPDATE combined with aggregates.
func lockConflictingIDs(tx *gorm.DB, doctorID uint, date time.Time, slot string, ids *[]uint) *gorm.DB {
	return conflictScope(tx, doctorID, date, slot).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Pluck("id", ids)
}

func (r *AppointmentGormRepository) FindConflicting(
	ctx context.Context,
	f domain.ConflictFilter,
) (bool, error) {

	var count int64
	if err := conflictScope(
		r.db.WithContext(ctx),
		f.DoctorID,
		domain.NormalizeDate(f.Date),
		f.TimeSlot,
	).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// CreateAppointment holds the no-double-booking invariant. The locked
// pre-check gives the friendly error on the common path; the partial
// unique index on (doctor_id, date, time_slot) among non-cancelled rows
// is what actually decides a race, so a lost writer still comes back as
// slot_conflict rather than a raw storage error.
func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var held []uint
		if err := lockConflictingIDs(tx, ap.DoctorID, ap.Date, ap.TimeSlot, &held).Error; err != nil {
			return err
		}

		if len(held) > 0 {
			return httperr.ErrBusiness("slot_conflict")
		}

		return tx.Create(ap).Error
	})

	if err != nil && httperr.IsUniqueViolation(err) {
		return httperr.ErrBusiness("slot_conflict")
	}

	return err
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointmentByID(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Patient").
		First(&ap, id).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
		return nil, err
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

// --------------------------------------------------
// Availability / listing
// --------------------------------------------------

func (r *AppointmentGormRepository) ListBookedSlots(
	ctx context.Context,
	f domain.DayFilter,
) ([]string, error) {

	start, end := domain.DayRange(f.Date)

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"doctor_id = ? AND date >= ? AND date < ?",
			f.DoctorID, start, end,
		)

	if f.ActiveOnly {
		q = q.Where("status <> ?", string(domain.StatusCancelled))
	}

	var slots []string
	if err := q.Order("id ASC").Pluck("time_slot", &slots).Error; err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	doctorID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment

	q := r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Patient").
		Where("date >= ? AND date < ?", start, end)

	if doctorID != 0 {
		q = q.Where("doctor_id = ?", doctorID)
	}

	if err := q.
		Order("date ASC, time_slot ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
