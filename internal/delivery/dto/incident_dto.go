package dto

import (
	"time"

	"dental-center/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// IncidentRequest carries the fields of a new appointment.
// An empty status defaults to Scheduled.
type IncidentRequest struct {
	PatientID           string                  `json:"patientId" validate:"required"`
	Title               string                  `json:"title" validate:"required,max=200"`
	Description         string                  `json:"description" validate:"required"`
	Comments            string                  `json:"comments"`
	AppointmentDate     time.Time               `json:"appointmentDate" validate:"required"`
	Cost                *decimal.Decimal        `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Treatment           *string                 `json:"treatment,omitempty"`
	Status              entity.IncidentStatus   `json:"status" validate:"omitempty,oneof=Scheduled Completed Pending Cancelled"`
	NextAppointmentDate *time.Time              `json:"nextAppointmentDate,omitempty"`
	Files               []entity.FileAttachment `json:"files,omitempty"`
}

// UpdateIncidentRequest is a partial update; nil fields are left untouched.
// Attachments change only through file upload and removal.
type UpdateIncidentRequest struct {
	PatientID           *string                `json:"patientId,omitempty" validate:"omitempty,min=1"`
	Title               *string                `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description         *string                `json:"description,omitempty" validate:"omitempty,min=1"`
	Comments            *string                `json:"comments,omitempty"`
	AppointmentDate     *time.Time             `json:"appointmentDate,omitempty"`
	Cost                *decimal.Decimal       `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Treatment           *string                `json:"treatment,omitempty"`
	Status              *entity.IncidentStatus `json:"status,omitempty" validate:"omitempty,oneof=Scheduled Completed Pending Cancelled"`
	NextAppointmentDate *time.Time             `json:"nextAppointmentDate,omitempty"`

	ClearCost                bool `json:"clearCost,omitempty"`
	ClearTreatment           bool `json:"clearTreatment,omitempty"`
	ClearNextAppointmentDate bool `json:"clearNextAppointmentDate,omitempty"`
}

// FileResponse describes an attachment without its content
type FileResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type IncidentResponse struct {
	ID                  string                `json:"id"`
	PatientID           string                `json:"patientId"`
	PatientName         string                `json:"patientName,omitempty"`
	Title               string                `json:"title"`
	Description         string                `json:"description"`
	Comments            string                `json:"comments,omitempty"`
	AppointmentDate     time.Time             `json:"appointmentDate"`
	Cost                *decimal.Decimal      `json:"cost,omitempty"`
	Treatment           *string               `json:"treatment,omitempty"`
	Status              entity.IncidentStatus `json:"status"`
	NextAppointmentDate *time.Time            `json:"nextAppointmentDate,omitempty"`
	Files               []FileResponse        `json:"files"`
	CreatedAt           time.Time             `json:"createdAt"`
	UpdatedAt           time.Time             `json:"updatedAt"`
}
