package dto

import (
	"time"
)

// PatientRequest carries the fields of a new patient
type PatientRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	DOB        string `json:"dob" validate:"required,datetime=2006-01-02"` // Format: YYYY-MM-DD
	Contact    string `json:"contact" validate:"required,max=20"`
	Email      string `json:"email" validate:"required,email"`
	HealthInfo string `json:"healthInfo" validate:"omitempty,max=1000"`
}

// UpdatePatientRequest is a partial update; nil fields are left untouched
type UpdatePatientRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	DOB        *string `json:"dob,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Contact    *string `json:"contact,omitempty" validate:"omitempty,min=1,max=20"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	HealthInfo *string `json:"healthInfo,omitempty" validate:"omitempty,max=1000"`
}

type PatientResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	DOB        string    `json:"dob"`
	Contact    string    `json:"contact"`
	Email      string    `json:"email"`
	HealthInfo string    `json:"healthInfo,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
