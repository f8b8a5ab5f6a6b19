package appointment

import "github.com/brightcare/clinic-scheduler/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusComplete  Status = "complete"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transition is permitted.
func IsTerminal(s Status) bool {
	return s == StatusComplete || s == StatusCancelled
}

// ===============================
// Transition guards
// ===============================

// CanConfirm: only a pending appointment may be confirmed.
func CanConfirm(current Status) error {
	if current != StatusPending {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanCancel: any non-terminal appointment may be cancelled.
func CanCancel(current Status) error {
	if IsTerminal(current) {
		return httperr.ErrBusiness("already_terminal")
	}
	return nil
}

// CanComplete: any non-terminal appointment may be completed.
// A cancelled appointment reports the more specific code.
func CanComplete(current Status) error {
	if current == StatusCancelled {
		return httperr.ErrBusiness("already_cancelled")
	}
	if IsTerminal(current) {
		return httperr.ErrBusiness("already_terminal")
	}
	return nil
}

// InitialStatus is the status of every newly booked appointment.
func InitialStatus() Status {
	return StatusPending
}
