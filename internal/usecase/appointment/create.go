package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brightcare/clinic-scheduler/internal/audit"
	"github.com/brightcare/clinic-scheduler/internal/cache"
	domain "github.com/brightcare/clinic-scheduler/internal/domain/appointment"
	"github.com/brightcare/clinic-scheduler/internal/httperr"
	"github.com/brightcare/clinic-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	DoctorID  uint
	PatientID uint

	Date     string // YYYY-MM-DD
	TimeSlot string

	Reason string
	Notes  string

	ActorID *uint
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo  domain.Repository
	cache *cache.SlotCache
	audit *audit.Dispatcher
	loc   *time.Location
}

func NewCreateAppointment(
	repo domain.Repository,
	slotCache *cache.SlotCache,
	auditDispatcher *audit.Dispatcher,
	loc *time.Location,
) *CreateAppointment {
	return &CreateAppointment{
		repo:  repo,
		cache: slotCache,
		audit: auditDispatcher,
		loc:   loc,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	if !domain.IsValidSlot(in.TimeSlot) {
		return nil, httperr.ErrBusiness("invalid_time_slot")
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, httperr.ErrBusiness("missing_reason")
	}

	date, err := time.ParseInLocation("2006-01-02", in.Date, uc.loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	doctor, err := uc.repo.GetDoctorByID(ctx, in.DoctorID)
	if err != nil || !doctor.IsActive {
		return nil, httperr.ErrBusiness("doctor_unavailable")
	}

	exists, err := uc.repo.PatientExists(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, httperr.ErrBusiness("patient_not_found")
	}

	// Fast-path conflict check. Advisory only: the repository repeats
	// the check under lock, so a race between here and the insert still
	// resolves to a single winner.
	conflict, err := uc.repo.FindConflicting(ctx, domain.ConflictFilter{
		DoctorID: doctor.ID,
		Date:     date,
		TimeSlot: in.TimeSlot,
	})
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, httperr.ErrBusiness("slot_conflict")
	}

	ap := &models.Appointment{
		Reference: uuid.NewString(),
		DoctorID:  doctor.ID,
		PatientID: in.PatientID,
		Date:      domain.NormalizeDate(date),
		TimeSlot:  in.TimeSlot,
		Status:    string(domain.InitialStatus()),
		Reason:    reason,
		Notes:     in.Notes,
	}

	// The repository raises slot_conflict when a non-cancelled
	// appointment already holds this doctor/date/slot.
	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, ap.DoctorID, ap.Date)

	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			UserID:   in.ActorID,
			Action:   "appointment_created",
			Entity:   "appointment",
			EntityID: &ap.ID,
		})
	}

	// Reload so the response carries doctor/patient display fields.
	if full, err := uc.repo.GetAppointmentByID(ctx, ap.ID); err == nil {
		return full, nil
	}

	return ap, nil
}
