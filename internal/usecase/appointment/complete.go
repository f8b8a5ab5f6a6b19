package appointment

import (
	"context"
	"time"

	"github.com/brightcare/clinic-scheduler/internal/audit"
	domain "github.com/brightcare/clinic-scheduler/internal/domain/appointment"
	"github.com/brightcare/clinic-scheduler/internal/models"
)

type CompleteAppointmentInput struct {
	AppointmentID uint
	Prescription  string
	Notes         string
	ActorID       *uint
}

type CompleteAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCompleteAppointment(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:  repo,
		audit: auditDispatcher,
	}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	in CompleteAppointmentInput,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentByID(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.Complete(ap, time.Now(), in.Prescription, in.Notes); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			UserID:   in.ActorID,
			Action:   "appointment_completed",
			Entity:   "appointment",
			EntityID: &ap.ID,
		})
	}

	return ap, nil
}
