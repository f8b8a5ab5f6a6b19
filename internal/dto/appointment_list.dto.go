package dto

import "time"

type AppointmentListDTO struct {
	ID          uint      `json:"id"`
	Reference   string    `json:"reference"`
	Date        time.Time `json:"date"`
	TimeSlot    string    `json:"time_slot"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason"`
	DoctorName  string    `json:"doctor_name"`
	PatientName string    `json:"patient_name"`
}
