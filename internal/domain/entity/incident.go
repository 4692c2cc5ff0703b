package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncidentStatus represents the status of an appointment
type IncidentStatus string

const (
	IncidentStatusScheduled IncidentStatus = "Scheduled"
	IncidentStatusCompleted IncidentStatus = "Completed"
	IncidentStatusPending   IncidentStatus = "Pending"
	IncidentStatusCancelled IncidentStatus = "Cancelled"
)

// IsValid reports whether s is one of the known statuses
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusScheduled, IncidentStatusCompleted, IncidentStatusPending, IncidentStatusCancelled:
		return true
	}
	return false
}

// Incident represents an appointment / treatment record of a patient
type Incident struct {
	ID                  string           `json:"id"`
	PatientID           string           `json:"patientId"`
	Title               string           `json:"title"`
	Description         string           `json:"description"`
	Comments            string           `json:"comments"`
	AppointmentDate     time.Time        `json:"appointmentDate"`
	Cost                *decimal.Decimal `json:"cost,omitempty"`
	Treatment           *string          `json:"treatment,omitempty"`
	Status              IncidentStatus   `json:"status"`
	NextAppointmentDate *time.Time       `json:"nextAppointmentDate,omitempty"`
	Files               []FileAttachment `json:"files"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

// IsCompleted checks if the treatment was carried out
func (i *Incident) IsCompleted() bool {
	return i.Status == IncidentStatusCompleted
}

// IsCancelled checks if the appointment was cancelled
func (i *Incident) IsCancelled() bool {
	return i.Status == IncidentStatusCancelled
}

// IsOpen checks if the appointment still has to happen (Scheduled or Pending)
func (i *Incident) IsOpen() bool {
	return i.Status == IncidentStatusScheduled || i.Status == IncidentStatusPending
}

// HasFiles checks if at least one document is attached
func (i *Incident) HasFiles() bool {
	return len(i.Files) > 0
}

// CostOrZero returns the cost, or zero when none was recorded
func (i *Incident) CostOrZero() decimal.Decimal {
	if i.Cost == nil {
		return decimal.Zero
	}
	return *i.Cost
}

// FindFile returns the index of the attachment with the given id, or -1
func (i *Incident) FindFile(fileID string) int {
	for idx := range i.Files {
		if i.Files[idx].ID == fileID {
			return idx
		}
	}
	return -1
}

// Clone returns a deep copy of the incident
func (i Incident) Clone() Incident {
	if i.Cost != nil {
		cost := *i.Cost
		i.Cost = &cost
	}
	i.Treatment = cloneString(i.Treatment)
	if i.NextAppointmentDate != nil {
		next := *i.NextAppointmentDate
		i.NextAppointmentDate = &next
	}
	i.Files = CloneFiles(i.Files)
	return i
}

// IncidentPatch holds the fields of a partial incident update.
// Nil fields are left untouched; ID, CreatedAt and UpdatedAt are not patchable.
type IncidentPatch struct {
	PatientID           *string
	Title               *string
	Description         *string
	Comments            *string
	AppointmentDate     *time.Time
	Cost                *decimal.Decimal
	Treatment           *string
	Status              *IncidentStatus
	NextAppointmentDate *time.Time
	Files               *[]FileAttachment

	// Clear* drop an optional field and win over a value set in the same patch
	ClearCost                bool
	ClearTreatment           bool
	ClearNextAppointmentDate bool
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
