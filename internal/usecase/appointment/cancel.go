package appointment

import (
	"context"
	"time"

	"github.com/brightcare/clinic-scheduler/internal/audit"
	"github.com/brightcare/clinic-scheduler/internal/cache"
	domain "github.com/brightcare/clinic-scheduler/internal/domain/appointment"
	"github.com/brightcare/clinic-scheduler/internal/models"
)

type CancelAppointment struct {
	repo  domain.Repository
	cache *cache.SlotCache
	audit *audit.Dispatcher
}

func NewCancelAppointment(
	repo domain.Repository,
	slotCache *cache.SlotCache,
	auditDispatcher *audit.Dispatcher,
) *CancelAppointment {
	return &CancelAppointment{
		repo:  repo,
		cache: slotCache,
		audit: auditDispatcher,
	}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	actorID *uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.Cancel(ap, time.Now()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	// Cancelling frees the slot, so the cached day is stale.
	uc.cache.Invalidate(ctx, ap.DoctorID, ap.Date)

	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			UserID:   actorID,
			Action:   "appointment_cancelled",
			Entity:   "appointment",
			EntityID: &ap.ID,
		})
	}

	return ap, nil
}
