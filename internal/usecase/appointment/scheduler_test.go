package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	domain "github.com/brightcare/clinic-scheduler/internal/domain/appointment"
	"github.com/brightcare/clinic-scheduler/internal/httperr"
	"github.com/brightcare/clinic-scheduler/internal/models"
)

// ======================================================
// FAKE REPOSITORY
// ======================================================

// fakeRepo mirrors the storage contract in memory. The mutex plus the
// conflict scan inside CreateAppointment stands in for the partial
// unique index: among non-cancelled rows a doctor/date/slot triple is
// unique, and concurrent creates serialize on the lock.
type fakeRepo struct {
	mu sync.Mutex

	doctors      map[uint]models.Doctor
	patients     map[uint]bool
	appointments map[uint]models.Appointment
	nextID       uint
	writes       int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		doctors:      make(map[uint]models.Doctor),
		patients:     make(map[uint]bool),
		appointments: make(map[uint]models.Appointment),
	}
}

func (r *fakeRepo) GetDoctorByID(_ context.Context, id uint) (*models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.doctors[id]
	if !ok {
		return nil, httperr.ErrBusiness("doctor_unavailable")
	}
	return &d, nil
}

func (r *fakeRepo) PatientExists(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.patients[id], nil
}

func (r *fakeRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.writes++
	for _, existing := range r.appointments {
		if existing.DoctorID == ap.DoctorID &&
			existing.Date.Equal(ap.Date) &&
			existing.TimeSlot == ap.TimeSlot &&
			existing.Status != string(domain.StatusCancelled) {
			return httperr.ErrBusiness("slot_conflict")
		}
	}

	r.nextID++
	ap.ID = r.nextID
	r.appointments[ap.ID] = *ap
	return nil
}

func (r *fakeRepo) FindConflicting(_ context.Context, f domain.ConflictFilter) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ap := range r.appointments {
		if ap.DoctorID == f.DoctorID &&
			ap.Date.Equal(domain.NormalizeDate(f.Date)) &&
			ap.TimeSlot == f.TimeSlot &&
			ap.Status != string(domain.StatusCancelled) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) GetAppointmentByID(_ context.Context, id uint) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ap, ok := r.appointments[id]
	if !ok {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	ap.Doctor = r.doctors[ap.DoctorID]
	return &ap, nil
}

func (r *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[ap.ID]; !ok {
		return httperr.ErrBusiness("appointment_not_found")
	}
	r.appointments[ap.ID] = *ap
	return nil
}

func (r *fakeRepo) ListBookedSlots(_ context.Context, f domain.DayFilter) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start, end := domain.DayRange(f.Date)

	var slots []string
	for _, ap := range r.appointments {
		if ap.DoctorID != f.DoctorID {
			continue
		}
		if ap.Date.Before(start) || !ap.Date.Before(end) {
			continue
		}
		if f.ActiveOnly && ap.Status == string(domain.StatusCancelled) {
			continue
		}
		slots = append(slots, ap.TimeSlot)
	}
	return slots, nil
}

func (r *fakeRepo) ListAppointmentsForPeriod(_ context.Context, doctorID uint, start, end time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Appointment
	for _, ap := range r.appointments {
		if doctorID != 0 && ap.DoctorID != doctorID {
			continue
		}
		if ap.Date.Before(start) || !ap.Date.Before(end) {
			continue
		}
		ap.Doctor = r.doctors[ap.DoctorID]
		out = append(out, ap)
	}
	return out, nil
}

var _ domain.Repository = (*fakeRepo)(nil)

// ======================================================
// FIXTURES
// ======================================================

const testDay = "2025-06-10"

func seededRepo() *fakeRepo {
	repo := newFakeRepo()
	repo.doctors[1] = models.Doctor{ID: 1, Name: "Dr. Reyes", IsActive: true}
	repo.doctors[2] = models.Doctor{ID: 2, Name: "Dr. Osei", IsActive: false}
	repo.patients[10] = true
	repo.patients[11] = true
	return repo
}

func newScheduler(repo *fakeRepo) (*CreateAppointment, *GetAvailableSlots, *ConfirmAppointment, *CancelAppointment, *CompleteAppointment) {
	return NewCreateAppointment(repo, nil, nil, time.UTC),
		NewGetAvailableSlots(repo, nil),
		NewConfirmAppointment(repo, nil),
		NewCancelAppointment(repo, nil, nil),
		NewCompleteAppointment(repo, nil)
}

func mustCreate(t *testing.T, uc *CreateAppointment, in CreateAppointmentInput) *models.Appointment {
	t.Helper()
	ap, err := uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return ap
}

func bookingInput(patientID uint, slot string) CreateAppointmentInput {
	return CreateAppointmentInput{
		DoctorID:  1,
		PatientID: patientID,
		Date:      testDay,
		TimeSlot:  slot,
		Reason:    "routine checkup",
	}
}

// ======================================================
// AVAILABILITY
// ======================================================

func TestAvailableSlots(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("FreeDayReturnsFullUniverse", func(t *testing.T) {
		_, slotsUC, _, _, _ := newScheduler(seededRepo())

		slots, err := slotsUC.Execute(ctx, 1, day)
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		if len(slots) != 17 {
			t.Fatalf("expected 17 slots, got %d", len(slots))
		}
		if slots[0] != "09:00 AM" {
			t.Errorf("first slot = %q", slots[0])
		}
	})

	t.Run("BookedSlotDisappears", func(t *testing.T) {
		repo := seededRepo()
		createUC, slotsUC, _, _, _ := newScheduler(repo)

		mustCreate(t, createUC, bookingInput(10, "10:00 AM"))

		slots, err := slotsUC.Execute(ctx, 1, day)
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		if len(slots) != 16 {
			t.Fatalf("expected 16 slots, got %d", len(slots))
		}
		for _, s := range slots {
			if s == "10:00 AM" {
				t.Error("booked slot still offered")
			}
		}
	})

	t.Run("UnknownDoctorGetsFullUniverse", func(t *testing.T) {
		_, slotsUC, _, _, _ := newScheduler(seededRepo())

		slots, err := slotsUC.Execute(ctx, 999, day)
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		if len(slots) != 17 {
			t.Errorf("expected full universe, got %d", len(slots))
		}
	})

	t.Run("OtherDoctorsBookingsDoNotInterfere", func(t *testing.T) {
		repo := seededRepo()
		repo.doctors[3] = models.Doctor{ID: 3, Name: "Dr. Lindqvist", IsActive: true}
		createUC, slotsUC, _, _, _ := newScheduler(repo)

		mustCreate(t, createUC, CreateAppointmentInput{
			DoctorID:  3,
			PatientID: 10,
			Date:      testDay,
			TimeSlot:  "09:00 AM",
			Reason:    "x-ray review",
		})

		slots, err := slotsUC.Execute(ctx, 1, day)
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		if len(slots) != 17 {
			t.Errorf("doctor 1 lost a slot to doctor 3: %d", len(slots))
		}
	})
}

// ======================================================
// CREATE
// ======================================================

func TestCreateAppointment(t *testing.T) {
	ctx := context.Background()

	t.Run("NewBookingIsPending", func(t *testing.T) {
		createUC, _, _, _, _ := newScheduler(seededRepo())

		ap := mustCreate(t, createUC, bookingInput(10, "10:00 AM"))

		if ap.Status != string(domain.StatusPending) {
			t.Errorf("status = %s, want pending", ap.Status)
		}
		if ap.Reference == "" {
			t.Error("missing booking reference")
		}
		if !ap.Date.Equal(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("date not normalized: %v", ap.Date)
		}
	})

	t.Run("DoubleBookingRejected", func(t *testing.T) {
		createUC, _, _, _, _ := newScheduler(seededRepo())

		mustCreate(t, createUC, bookingInput(10, "10:00 AM"))

		_, err := createUC.Execute(ctx, bookingInput(11, "10:00 AM"))
		if !httperr.IsBusiness(err, "slot_conflict") {
			t.Fatalf("expected slot_conflict, got %v", err)
		}
	})

	t.Run("ConflictStopsBeforeWrite", func(t *testing.T) {
		repo := seededRepo()
		createUC, _, _, _, _ := newScheduler(repo)

		mustCreate(t, createUC, bookingInput(10, "10:00 AM"))
		writesBefore := repo.writes

		_, err := createUC.Execute(ctx, bookingInput(11, "10:00 AM"))
		if !httperr.IsBusiness(err, "slot_conflict") {
			t.Fatalf("expected slot_conflict, got %v", err)
		}
		if repo.writes != writesBefore {
			t.Errorf("known-conflicting booking reached the write path")
		}
	})

	t.Run("InactiveDoctorRejected", func(t *testing.T) {
		createUC, _, _, _, _ := newScheduler(seededRepo())

		in := bookingInput(10, "10:00 AM")
		in.DoctorID = 2
		_, err := createUC.Execute(ctx, in)
		if !httperr.IsBusiness(err, "doctor_unavailable") {
			t.Fatalf("expected doctor_unavailable, got %v", err)
		}
	})

	t.Run("MissingDoctorRejected", func(t *testing.T) {
		createUC, _, _, _, _ := newScheduler(seededRepo())

		in := bookingInput(10, "10:00 AM")
		in.DoctorID = 999
		_, err := createUC.Execute(ctx, in)
		if !httperr.IsBusiness(err, "doctor_unavailable") {
			t.Fatalf("expected doctor_unavailable, got %v", err)
		}
	})

	t.Run("UnknownPatientRejected", func(t *testing.T) {
		createUC, _, _, _, _ := newScheduler(seededRepo())

		in := bookingInput(999, "10:00 AM")
		_, err := createUC.Execute(ctx, in)
		if !httperr.IsBusiness(err, "patient_not_found") {
			t.Fatalf("expected patient_not_found, got %v", err)
		}
	})

	t.Run("InvalidSlotLabelRejected", func(t *testing.T) {
		createUC, _, _, _, _ := newScheduler(seededRepo())

		_, err := createUC.Execute(ctx, bookingInput(10, "10:15 AM"))
		if !httperr.IsBusiness(err, "invalid_time_slot") {
			t.Fatalf("expected invalid_time_slot, got %v", err)
		}
	})

	t.Run("BlankReasonRejected", func(t *testing.T) {
		createUC, _, _, _, _ := newScheduler(seededRepo())

		in := bookingInput(10, "10:00 AM")
		in.Reason = "   "
		_, err := createUC.Execute(ctx, in)
		if !httperr.IsBusiness(err, "missing_reason") {
			t.Fatalf("expected missing_reason, got %v", err)
		}
	})

	t.Run("UnparseableDateRejected", func(t *testing.T) {
		createUC, _, _, _, _ := newScheduler(seededRepo())

		in := bookingInput(10, "10:00 AM")
		in.Date = "10/06/2025"
		_, err := createUC.Execute(ctx, in)
		if !httperr.IsBusiness(err, "invalid_date") {
			t.Fatalf("expected invalid_date, got %v", err)
		}
	})
}

// Two concurrent creates for the same doctor/date/slot: exactly one
// wins, the other sees slot_conflict.
func TestConcurrentCreateOneWinner(t *testing.T) {
	ctx := context.Background()
	createUC, _, _, _, _ := newScheduler(seededRepo())

	results := make(chan error, 2)

	var wg sync.WaitGroup
	for _, patientID := range []uint{10, 11} {
		wg.Add(1)
		go func(pid uint) {
			defer wg.Done()
			_, err := createUC.Execute(ctx, bookingInput(pid, "11:00 AM"))
			results <- err
		}(patientID)
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case httperr.IsBusiness(err, "slot_conflict"):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if successes != 1 || conflicts != 1 {
		t.Fatalf("got %d successes and %d conflicts, want 1 and 1", successes, conflicts)
	}
}

// ======================================================
// LIFECYCLE
// ======================================================

func TestAppointmentLifecycle(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("CancellationFreesTheSlot", func(t *testing.T) {
		createUC, slotsUC, _, cancelUC, _ := newScheduler(seededRepo())

		ap := mustCreate(t, createUC, bookingInput(10, "10:00 AM"))

		if _, err := cancelUC.Execute(ctx, ap.ID, nil); err != nil {
			t.Fatalf("cancel: %v", err)
		}

		slots, err := slotsUC.Execute(ctx, 1, day)
		if err != nil {
			t.Fatalf("slots: %v", err)
		}

		found := false
		for _, s := range slots {
			if s == "10:00 AM" {
				found = true
			}
		}
		if !found {
			t.Error("cancelled slot not offered again")
		}

		// And the freed slot is bookable by someone else.
		if _, err := createUC.Execute(ctx, bookingInput(11, "10:00 AM")); err != nil {
			t.Fatalf("rebooking freed slot: %v", err)
		}
	})

	t.Run("ConfirmThenComplete", func(t *testing.T) {
		createUC, _, confirmUC, _, completeUC := newScheduler(seededRepo())

		ap := mustCreate(t, createUC, bookingInput(10, "02:00 PM"))

		confirmed, err := confirmUC.Execute(ctx, ap.ID, nil)
		if err != nil {
			t.Fatalf("confirm: %v", err)
		}
		if confirmed.Status != string(domain.StatusConfirmed) {
			t.Errorf("status = %s", confirmed.Status)
		}

		done, err := completeUC.Execute(ctx, CompleteAppointmentInput{
			AppointmentID: ap.ID,
			Prescription:  "Ibuprofen 200mg",
		})
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		if done.Status != string(domain.StatusComplete) {
			t.Errorf("status = %s", done.Status)
		}
		if done.Prescription != "Ibuprofen 200mg" {
			t.Errorf("prescription = %q", done.Prescription)
		}
	})

	t.Run("CompletedCannotBeCancelled", func(t *testing.T) {
		createUC, _, _, cancelUC, completeUC := newScheduler(seededRepo())

		ap := mustCreate(t, createUC, bookingInput(10, "03:00 PM"))

		if _, err := completeUC.Execute(ctx, CompleteAppointmentInput{
			AppointmentID: ap.ID,
			Prescription:  "Ibuprofen 200mg",
		}); err != nil {
			t.Fatalf("complete: %v", err)
		}

		_, err := cancelUC.Execute(ctx, ap.ID, nil)
		if !httperr.IsBusiness(err, "already_terminal") {
			t.Fatalf("expected already_terminal, got %v", err)
		}
	})

	t.Run("CancelledCannotBeCompleted", func(t *testing.T) {
		createUC, _, _, cancelUC, completeUC := newScheduler(seededRepo())

		ap := mustCreate(t, createUC, bookingInput(10, "04:00 PM"))

		if _, err := cancelUC.Execute(ctx, ap.ID, nil); err != nil {
			t.Fatalf("cancel: %v", err)
		}

		_, err := completeUC.Execute(ctx, CompleteAppointmentInput{AppointmentID: ap.ID})
		if !httperr.IsBusiness(err, "already_cancelled") {
			t.Fatalf("expected already_cancelled, got %v", err)
		}
	})

	t.Run("UnknownAppointment", func(t *testing.T) {
		_, _, _, cancelUC, completeUC := newScheduler(seededRepo())

		if _, err := cancelUC.Execute(ctx, 404, nil); !httperr.IsBusiness(err, "appointment_not_found") {
			t.Fatalf("cancel: expected appointment_not_found, got %v", err)
		}
		if _, err := completeUC.Execute(ctx, CompleteAppointmentInput{AppointmentID: 404}); !httperr.IsBusiness(err, "appointment_not_found") {
			t.Fatalf("complete: expected appointment_not_found, got %v", err)
		}
	})
}

// ======================================================
// LISTING
// ======================================================

func TestListAppointmentsByDate(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo()
	createUC, _, _, _, _ := newScheduler(repo)
	listUC := NewListAppointmentsByDate(repo)

	mustCreate(t, createUC, bookingInput(10, "09:00 AM"))
	mustCreate(t, createUC, bookingInput(11, "01:30 PM"))

	otherDay := bookingInput(10, "09:00 AM")
	otherDay.Date = "2025-06-11"
	mustCreate(t, createUC, otherDay)

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	out, err := listUC.Execute(ctx, 1, day)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("expected 2 appointments on %s, got %d", testDay, len(out))
	}
	for _, item := range out {
		if item.DoctorName != "Dr. Reyes" {
			t.Errorf("doctor name = %q", item.DoctorName)
		}
	}
}
