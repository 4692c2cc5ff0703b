package dto

import (
	"github.com/shopspring/decimal"
)

type StatsResponse struct {
	TotalPatients       int             `json:"totalPatients"`
	TotalAppointments   int             `json:"totalAppointments"`
	TodayAppointments   int             `json:"todayAppointments"`
	CompletedTreatments int             `json:"completedTreatments"`
	PendingTreatments   int             `json:"pendingTreatments"`
	CancelledTreatments int             `json:"cancelledTreatments"`
	TotalRevenue        decimal.Decimal `json:"totalRevenue"`
	CompletionRate      int             `json:"completionRate"` // percent of all appointments
}

type TopPatientResponse struct {
	PatientID        string          `json:"patientId"`
	Name             string          `json:"name"`
	AppointmentCount int             `json:"appointmentCount"`
	TotalSpent       decimal.Decimal `json:"totalSpent"`
}

type PatientSummaryResponse struct {
	PatientID  string          `json:"patientId"`
	Upcoming   int             `json:"upcoming"`
	Completed  int             `json:"completed"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
	Files      int             `json:"files"`
}

// DashboardResponse is what the admin dashboard (or a patient's own view) shows
type DashboardResponse struct {
	Stats    *StatsResponse          `json:"stats,omitempty"`
	Summary  *PatientSummaryResponse `json:"summary,omitempty"`
	Upcoming []IncidentResponse      `json:"upcoming"`
	Today    []IncidentResponse      `json:"today,omitempty"`
	Top      []TopPatientResponse    `json:"topPatients,omitempty"`
}
