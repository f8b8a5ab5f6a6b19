package appointment

import (
	"context"
	"time"

	domain "github.com/brightcare/clinic-scheduler/internal/domain/appointment"
	"github.com/brightcare/clinic-scheduler/internal/dto"
)

type ListAppointmentsByDate struct {
	repo domain.Repository
}

func NewListAppointmentsByDate(
	repo domain.Repository,
) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{
		repo: repo,
	}
}

func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	doctorID uint,
	date time.Time,
) ([]dto.AppointmentListDTO, error) {

	start, end := domain.DayRange(date)

	appointments, err := uc.repo.ListAppointmentsForPeriod(
		ctx,
		doctorID,
		start,
		end,
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, dto.AppointmentListDTO{
			ID:          ap.ID,
			Reference:   ap.Reference,
			Date:        ap.Date,
			TimeSlot:    ap.TimeSlot,
			Status:      ap.Status,
			Reason:      ap.Reason,
			DoctorName:  ap.Doctor.Name,
			PatientName: ap.Patient.Name,
		})
	}

	return out, nil
}
