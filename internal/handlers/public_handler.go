package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/brightcare/clinic-scheduler/internal/httperr"
	"github.com/brightcare/clinic-scheduler/internal/models"
	ucAppointment "github.com/brightcare/clinic-scheduler/internal/usecase/appointment"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler serves the unauthenticated booking surface: the list of
// active doctors and the free slots per doctor/day.
type PublicHandler struct {
	db      *gorm.DB
	slotsUC *ucAppointment.GetAvailableSlots
	loc     *time.Location
}

func NewPublicHandler(
	db *gorm.DB,
	slotsUC *ucAppointment.GetAvailableSlots,
	loc *time.Location,
) *PublicHandler {
	return &PublicHandler{
		db:      db,
		slotsUC: slotsUC,
		loc:     loc,
	}
}

////////////////////////////////////////////////////////
// DOCTORS
////////////////////////////////////////////////////////

func (h *PublicHandler) ListDoctors(c *gin.Context) {
	var doctors []models.Doctor
	if err := h.db.
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&doctors).Error; err != nil {

		httperr.Internal(c, "failed_to_list_doctors", "Could not list doctors.")
		return
	}

	c.JSON(http.StatusOK, doctors)
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) AvailableSlots(c *gin.Context) {
	doctorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_doctor_id", "Doctor id must be numeric.")
		return
	}

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

	slots, err := h.slotsUC.Execute(c.Request.Context(), uint(doctorID), date)
	if err != nil {
		httperr.Internal(c, "availability_failed", "Could not compute free slots.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"slots": slots,
	})
}
