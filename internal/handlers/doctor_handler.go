package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/brightcare/clinic-scheduler/internal/models"
)

type DoctorHandler struct {
	db *gorm.DB
}

func NewDoctorHandler(db *gorm.DB) *DoctorHandler {
	return &DoctorHandler{db: db}
}

// --------- Requests ---------

type CreateDoctorRequest struct {
	Name           string `json:"name" binding:"required"`
	Specialization string `json:"specialization"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone"`
	AvailableDays  string `json:"available_days"`
}

type UpdateDoctorRequest struct {
	Name           *string `json:"name,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	AvailableDays  *string `json:"available_days,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

// --------- Handlers ---------

func (h *DoctorHandler) List(c *gin.Context) {
	specialization := strings.ToLower(strings.TrimSpace(c.Query("specialization")))
	activeStr := strings.TrimSpace(c.Query("active"))
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Model(&models.Doctor{})

	if specialization != "" {
		q = q.Where("LOWER(specialization) = ?", specialization)
	}

	if activeStr == "true" {
		q = q.Where("is_active = ?", true)
	} else if activeStr == "false" {
		q = q.Where("is_active = ?", false)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var doctors []models.Doctor
	if err := q.
		Order("id ASC").
		Find(&doctors).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_doctors"})
		return
	}

	c.JSON(http.StatusOK, doctors)
}

func (h *DoctorHandler) Create(c *gin.Context) {
	var req CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	doctor := models.Doctor{
		Name:           req.Name,
		Specialization: req.Specialization,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          req.Phone,
		AvailableDays:  req.AvailableDays,
		IsActive:       true,
	}

	if err := h.db.Create(&doctor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_doctor"})
		return
	}

	c.JSON(http.StatusCreated, doctor)
}

func (h *DoctorHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var doctor models.Doctor
	if err := h.db.First(&doctor, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "doctor_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_doctor"})
		return
	}

	var req UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.Email != nil {
		doctor.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		doctor.Phone = *req.Phone
	}
	if req.AvailableDays != nil {
		doctor.AvailableDays = *req.AvailableDays
	}
	if req.IsActive != nil {
		doctor.IsActive = *req.IsActive
	}

	if err := h.db.Save(&doctor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_doctor"})
		return
	}

	c.JSON(http.StatusOK, doctor)
}
