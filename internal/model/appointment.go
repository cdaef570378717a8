package model

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled           AppointmentStatus = "scheduled"
	AppointmentStatusAttendanceConfirmed AppointmentStatus = "attendance_confirmed"
	AppointmentStatusCancelled           AppointmentStatus = "cancelled"
	AppointmentStatusRescheduleRequested AppointmentStatus = "reschedule_requested"
)

// AppointmentAction is the web layer's shadow record of one clinic visit.
// The authoritative schedule lives in the practice-management system; rows
// here are created by the sync job and mutated only through the confirm and
// cancel endpoints.
type AppointmentAction struct {
	ID                    string            `db:"id" json:"id"`
	AppointmentDate       time.Time         `db:"appointment_date" json:"appointmentDate"`
	PatientID             *string           `db:"patient_id" json:"patientId,omitempty"`
	PatientName           string            `db:"patient_name" json:"patientName"`
	PatientPhone          string            `db:"patient_phone" json:"patientPhone"`
	DoctorName            string            `db:"doctor_name" json:"doctorName"`
	Status                AppointmentStatus `db:"status" json:"status"`
	AttendanceConfirmed   bool              `db:"attendance_confirmed" json:"attendanceConfirmed"`
	AttendanceConfirmedAt *time.Time        `db:"attendance_confirmed_at" json:"attendanceConfirmedAt,omitempty"`
	RescheduleRequestedAt *time.Time        `db:"reschedule_requested_at" json:"rescheduleRequestedAt,omitempty"`
	CreatedAt             time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time         `db:"updated_at" json:"updatedAt"`
}

// IsCancelled reports whether the record already reached a cancel-terminal state.
func (a *AppointmentAction) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled || a.Status == AppointmentStatusRescheduleRequested
}

// ActionKind identifies one of the appointment lifecycle endpoints.
type ActionKind string

const (
	ActionConfirm     ActionKind = "confirm"
	ActionCancel      ActionKind = "cancel"
	ActionConfirmAuth ActionKind = "confirm-authenticated"
)

type AppointmentActionRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
	PatientID     string `json:"patientId"`
	ProdentisID   string `json:"prodentisId"`
}

// AppointmentActionResponse is the uniform body of the three action endpoints.
// Channel flags report best-effort notification outcomes; they never influence
// the HTTP status.
type AppointmentActionResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	TelegramSent     bool   `json:"telegramSent"`
	WhatsappSent     bool   `json:"whatsappSent"`
	EmailSent        bool   `json:"emailSent"`
	AlreadyConfirmed bool   `json:"alreadyConfirmed,omitempty"`
	AlreadyCancelled bool   `json:"alreadyCancelled,omitempty"`
}
