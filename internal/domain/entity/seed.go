package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeedState returns the built-in data used when nothing was persisted yet.
// Every call builds fresh values, so callers may keep and modify the result.
func SeedState() *AppState {
	p1, p2 := "p1", "p2"
	cost := decimal.NewFromInt(120)
	treatment := "Professional cleaning and fluoride treatment"
	next := seedTime("2025-06-25T10:00:00Z")

	return &AppState{
		Users: []User{
			{ID: "1", Email: "admin@entnt.in", Password: "admin123", Role: RoleAdmin},
			{ID: "2", Email: "john@entnt.in", Password: "patient123", Role: RolePatient, PatientID: &p1},
			{ID: "3", Email: "jane@entnt.in", Password: "patient123", Role: RolePatient, PatientID: &p2},
		},
		Patients: []Patient{
			{
				ID:         "p1",
				Name:       "John Doe",
				DOB:        "1990-05-10",
				Contact:    "1234567890",
				Email:      "john@entnt.in",
				HealthInfo: "No known allergies",
				CreatedAt:  seedTime("2024-01-15T10:00:00Z"),
			},
			{
				ID:         "p2",
				Name:       "Jane Smith",
				DOB:        "1985-08-22",
				Contact:    "9876543210",
				Email:      "jane@entnt.in",
				HealthInfo: "Allergic to latex",
				CreatedAt:  seedTime("2024-02-20T14:30:00Z"),
			},
		},
		Incidents: []Incident{
			{
				ID:                  "i1",
				PatientID:           "p1",
				Title:               "Routine Cleaning",
				Description:         "Regular dental cleaning and checkup",
				Comments:            "Good oral health, no issues found",
				AppointmentDate:     seedTime("2024-12-25T10:00:00Z"),
				Cost:                &cost,
				Treatment:           &treatment,
				Status:              IncidentStatusCompleted,
				NextAppointmentDate: &next,
				Files:               []FileAttachment{},
				CreatedAt:           seedTime("2024-12-20T09:00:00Z"),
				UpdatedAt:           seedTime("2024-12-25T11:00:00Z"),
			},
			{
				ID:              "i2",
				PatientID:       "p2",
				Title:           "Tooth Filling",
				Description:     "Cavity filling on upper right molar",
				Comments:        "Small cavity, routine filling procedure",
				AppointmentDate: seedTime("2024-12-28T14:00:00Z"),
				Status:          IncidentStatusScheduled,
				Files:           []FileAttachment{},
				CreatedAt:       seedTime("2024-12-22T16:00:00Z"),
				UpdatedAt:       seedTime("2024-12-22T16:00:00Z"),
			},
			{
				ID:              "i3",
				PatientID:       "p1",
				Title:           "Follow-up Consultation",
				Description:     "Follow-up after root canal treatment",
				Comments:        "Check healing progress",
				AppointmentDate: seedTime("2025-01-15T09:00:00Z"),
				Status:          IncidentStatusScheduled,
				Files:           []FileAttachment{},
				CreatedAt:       seedTime("2024-12-23T08:00:00Z"),
				UpdatedAt:       seedTime("2024-12-23T08:00:00Z"),
			},
		},
	}
}

func seedTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}
