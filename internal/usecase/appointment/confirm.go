package appointment

import (
	"context"

	"github.com/brightcare/clinic-scheduler/internal/audit"
	domain "github.com/brightcare/clinic-scheduler/internal/domain/appointment"
	"github.com/brightcare/clinic-scheduler/internal/models"
)

type ConfirmAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewConfirmAppointment(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
) *ConfirmAppointment {
	return &ConfirmAppointment{
		repo:  repo,
		audit: auditDispatcher,
	}
}

func (uc *ConfirmAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	actorID *uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.Confirm(ap); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			UserID:   actorID,
			Action:   "appointment_confirmed",
			Entity:   "appointment",
			EntityID: &ap.ID,
		})
	}

	return ap, nil
}
