package handlers

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brightcare/clinic-scheduler/internal/httperr"
	"github.com/brightcare/clinic-scheduler/internal/httpresp"
	"github.com/brightcare/clinic-scheduler/internal/middleware"
	ucAppointment "github.com/brightcare/clinic-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	createUC      *ucAppointment.CreateAppointment
	confirmUC     *ucAppointment.ConfirmAppointment
	cancelUC      *ucAppointment.CancelAppointment
	completeUC    *ucAppointment.CompleteAppointment
	listByDateUC  *ucAppointment.ListAppointmentsByDate
	listByMonthUC *ucAppointment.ListAppointmentsByMonth

	loc *time.Location
}

func NewAppointmentHandler(
	createUC *ucAppointment.CreateAppointment,
	confirmUC *ucAppointment.ConfirmAppointment,
	cancelUC *ucAppointment.CancelAppointment,
	completeUC *ucAppointment.CompleteAppointment,
	listByDateUC *ucAppointment.ListAppointmentsByDate,
	listByMonthUC *ucAppointment.ListAppointmentsByMonth,
	loc *time.Location,
) *AppointmentHandler {
	return &AppointmentHandler{
		createUC:      createUC,
		confirmUC:     confirmUC,
		cancelUC:      cancelUC,
		completeUC:    completeUC,
		listByDateUC:  listByDateUC,
		listByMonthUC: listByMonthUC,
		loc:           loc,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	DoctorID  uint   `json:"doctor_id" binding:"required"`
	PatientID uint   `json:"patient_id" binding:"required"`
	Date      string `json:"date" binding:"required"` // YYYY-MM-DD
	TimeSlot  string `json:"time_slot" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
	Notes     string `json:"notes"`
}

type CompleteAppointmentRequest struct {
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	actorID := actorFromContext(c)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "validation_error", "Missing or malformed fields.")
		return
	}

	ap, err := h.createUC.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		Reason:    req.Reason,
		Notes:     req.Notes,
		ActorID:   actorID,
	})
	if err != nil {
		mapSchedulingError(c, err)
		return
	}

	httpresp.Created(c, ap)
}

// ======================================================
// STATE TRANSITIONS
// ======================================================

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}

	ap, err := h.confirmUC.Execute(c.Request.Context(), id, actorFromContext(c))
	if err != nil {
		mapSchedulingError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}

	ap, err := h.cancelUC.Execute(c.Request.Context(), id, actorFromContext(c))
	if err != nil {
		mapSchedulingError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}

	// The body is optional, but when one arrives it may come chunked
	// with an unknown ContentLength, so always attempt the bind and
	// treat an empty body as no fields.
	var req CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httperr.BadRequest(c, "validation_error", "Malformed body.")
		return
	}

	ap, err := h.completeUC.Execute(c.Request.Context(), ucAppointment.CompleteAppointmentInput{
		AppointmentID: id,
		Prescription:  req.Prescription,
		Notes:         req.Notes,
		ActorID:       actorFromContext(c),
	})
	if err != nil {
		mapSchedulingError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Date is required.")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, h.loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Date must be YYYY-MM-DD.")
		return
	}

	doctorID := uintQuery(c, "doctor_id")

	out, err := h.listByDateUC.Execute(c.Request.Context(), doctorID, date)
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Could not list appointments.")
		return
	}

	httpresp.List(c, out)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Year is required and must be sane.")
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "Month must be 1-12.")
		return
	}

	doctorID := uintQuery(c, "doctor_id")

	out, err := h.listByMonthUC.Execute(c.Request.Context(), doctorID, year, month)
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Could not list appointments.")
		return
	}

	c.JSON(200, gin.H{
		"year":         year,
		"month":        month,
		"appointments": out,
	})
}

// ======================================================
// HELPERS
// ======================================================

func appointmentIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Appointment id must be numeric.")
		return 0, false
	}
	return uint(id), true
}

func uintQuery(c *gin.Context, key string) uint {
	v, err := strconv.ParseUint(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

func actorFromContext(c *gin.Context) *uint {
	if v, ok := c.Get(middleware.ContextUserID); ok {
		if id, ok := v.(uint); ok {
			return &id
		}
	}
	return nil
}

// mapSchedulingError translates scheduler business codes into HTTP
// responses. Storage errors fall through to a generic 500.
func mapSchedulingError(c *gin.Context, err error) {
	code, ok := httperr.CodeOf(err)
	if !ok {
		httperr.Internal(c, "internal_error", "Unexpected error.")
		return
	}

	switch code {
	case "slot_conflict":
		httperr.Conflict(c, code, "This time slot is already booked for the doctor.")
	case "doctor_unavailable":
		httperr.BadRequest(c, code, "Doctor is inactive or does not exist.")
	case "patient_not_found", "appointment_not_found":
		httperr.NotFound(c, code, "Referenced record does not exist.")
	case "invalid_time_slot", "invalid_date", "missing_reason":
		httperr.BadRequest(c, code, "Invalid booking data.")
	case "already_terminal":
		httperr.BadRequest(c, code, "Appointment is already complete or cancelled.")
	case "already_cancelled":
		httperr.BadRequest(c, code, "Appointment was cancelled.")
	case "invalid_state":
		httperr.BadRequest(c, code, "Transition not allowed from the current status.")
	default:
		httperr.BadRequest(c, code, "Request rejected.")
	}
}
