package appointment

import (
	"context"
	"time"

	"github.com/brightcare/clinic-scheduler/internal/cache"
	domain "github.com/brightcare/clinic-scheduler/internal/domain/appointment"
)

type GetAvailableSlots struct {
	repo  domain.Repository
	cache *cache.SlotCache
}

func NewGetAvailableSlots(
	repo domain.Repository,
	slotCache *cache.SlotCache,
) *GetAvailableSlots {
	return &GetAvailableSlots{
		repo:  repo,
		cache: slotCache,
	}
}

// Execute returns the free slot labels for a doctor on one calendar day,
// in the fixed universe order. Cancelled appointments do not occupy a
// slot. An unknown doctor simply has nothing booked, so the full
// universe comes back; existence checks belong to the booking path.
func (uc *GetAvailableSlots) Execute(
	ctx context.Context,
	doctorID uint,
	date time.Time,
) ([]string, error) {

	if slots, ok := uc.cache.Get(ctx, doctorID, date); ok {
		return slots, nil
	}

	booked, err := uc.repo.ListBookedSlots(ctx, domain.DayFilter{
		DoctorID:   doctorID,
		Date:       date,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}

	slots := domain.AvailableSlots(booked)
	uc.cache.Set(ctx, doctorID, date, slots)

	return slots, nil
}
