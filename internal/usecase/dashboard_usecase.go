package usecase

import (
	"fmt"
	"sort"
	"time"

	"dental-center/internal/converter"
	"dental-center/internal/delivery/dto"
	"dental-center/internal/domain/entity"

	"github.com/shopspring/decimal"
)

const (
	defaultUpcomingLimit = 10
	defaultTopLimit      = 5
)

// DashboardUsecase derives read models from the current store snapshot
type DashboardUsecase interface {
	UpcomingAppointments(limit int) []dto.IncidentResponse
	TodayAppointments() []dto.IncidentResponse
	AppointmentsOn(day time.Time) []dto.IncidentResponse
	Stats() dto.StatsResponse
	TopPatients(limit int) []dto.TopPatientResponse
	PatientSummary(patientID string) (dto.PatientSummaryResponse, error)
	// Overview is the admin dashboard for admins and the own summary for patients
	Overview(user *entity.User) (dto.DashboardResponse, error)
}

type dashboardUsecase struct {
	store ClinicStore
	loc   *time.Location
	now   func() time.Time
}

// NewDashboardUsecase creates a DashboardUsecase. Calendar days are evaluated in loc.
func NewDashboardUsecase(store ClinicStore, loc *time.Location, now func() time.Time) DashboardUsecase {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &dashboardUsecase{
		store: store,
		loc:   loc,
		now:   now,
	}
}

func (u *dashboardUsecase) UpcomingAppointments(limit int) []dto.IncidentResponse {
	state := u.store.Snapshot()
	return converter.IncidentsToResponse(upcoming(state.Incidents, u.now(), limit), state.Patients)
}

func (u *dashboardUsecase) TodayAppointments() []dto.IncidentResponse {
	return u.AppointmentsOn(u.now())
}

func (u *dashboardUsecase) AppointmentsOn(day time.Time) []dto.IncidentResponse {
	state := u.store.Snapshot()
	return converter.IncidentsToResponse(u.onDay(state.Incidents, day), state.Patients)
}

func (u *dashboardUsecase) Stats() dto.StatsResponse {
	state := u.store.Snapshot()

	stats := dto.StatsResponse{
		TotalPatients:     len(state.Patients),
		TotalAppointments: len(state.Incidents),
		TodayAppointments: len(u.onDay(state.Incidents, u.now())),
		TotalRevenue:      decimal.Zero,
	}
	for i := range state.Incidents {
		incident := &state.Incidents[i]
		switch {
		case incident.IsCompleted():
			stats.CompletedTreatments++
			stats.TotalRevenue = stats.TotalRevenue.Add(incident.CostOrZero())
		case incident.IsOpen():
			stats.PendingTreatments++
		case incident.IsCancelled():
			stats.CancelledTreatments++
		}
	}
	if stats.TotalAppointments > 0 {
		stats.CompletionRate = int(decimal.NewFromInt(int64(stats.CompletedTreatments * 100)).
			Div(decimal.NewFromInt(int64(stats.TotalAppointments))).
			Round(0).IntPart())
	}
	return stats
}

func (u *dashboardUsecase) TopPatients(limit int) []dto.TopPatientResponse {
	state := u.store.Snapshot()

	top := make([]dto.TopPatientResponse, 0, len(state.Patients))
	for _, p := range state.Patients {
		entry := dto.TopPatientResponse{PatientID: p.ID, Name: p.Name, TotalSpent: decimal.Zero}
		for i := range state.Incidents {
			incident := &state.Incidents[i]
			if incident.PatientID != p.ID {
				continue
			}
			entry.AppointmentCount++
			entry.TotalSpent = entry.TotalSpent.Add(incident.CostOrZero())
		}
		top = append(top, entry)
	}

	sort.SliceStable(top, func(i, j int) bool {
		if cmp := top[i].TotalSpent.Cmp(top[j].TotalSpent); cmp != 0 {
			return cmp > 0
		}
		return top[i].Name < top[j].Name
	})
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top
}

func (u *dashboardUsecase) PatientSummary(patientID string) (dto.PatientSummaryResponse, error) {
	state := u.store.Snapshot()
	if !state.HasPatient(patientID) {
		return dto.PatientSummaryResponse{}, fmt.Errorf("%w: %s", ErrPatientNotFound, patientID)
	}

	now := u.now()
	summary := dto.PatientSummaryResponse{PatientID: patientID, TotalSpent: decimal.Zero}
	for i := range state.Incidents {
		incident := &state.Incidents[i]
		if incident.PatientID != patientID {
			continue
		}
		if incident.AppointmentDate.After(now) {
			summary.Upcoming++
		}
		if incident.IsCompleted() {
			summary.Completed++
			summary.TotalSpent = summary.TotalSpent.Add(incident.CostOrZero())
		}
		summary.Files += len(incident.Files)
	}
	return summary, nil
}

func (u *dashboardUsecase) Overview(user *entity.User) (dto.DashboardResponse, error) {
	if user == nil {
		return dto.DashboardResponse{}, ErrNotAuthenticated
	}

	if user.IsAdmin() {
		stats := u.Stats()
		return dto.DashboardResponse{
			Stats:    &stats,
			Upcoming: u.UpcomingAppointments(defaultUpcomingLimit),
			Today:    u.TodayAppointments(),
			Top:      u.TopPatients(defaultTopLimit),
		}, nil
	}

	if user.PatientID == nil {
		return dto.DashboardResponse{}, ErrPatientNotFound
	}
	summary, err := u.PatientSummary(*user.PatientID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	state := u.store.Snapshot()
	own := make([]entity.Incident, 0)
	for _, incident := range state.Incidents {
		if incident.PatientID == *user.PatientID {
			own = append(own, incident)
		}
	}
	return dto.DashboardResponse{
		Summary:  &summary,
		Upcoming: converter.IncidentsToResponse(upcoming(own, u.now(), 0), state.Patients),
	}, nil
}

func (u *dashboardUsecase) onDay(incidents []entity.Incident, day time.Time) []entity.Incident {
	y, m, d := day.In(u.loc).Date()
	out := make([]entity.Incident, 0)
	for _, incident := range incidents {
		iy, im, id := incident.AppointmentDate.In(u.loc).Date()
		if iy == y && im == m && id == d {
			out = append(out, incident)
		}
	}
	sortByAppointment(out)
	return out
}

// upcoming returns incidents scheduled after now, soonest first
func upcoming(incidents []entity.Incident, now time.Time, limit int) []entity.Incident {
	out := make([]entity.Incident, 0)
	for _, incident := range incidents {
		if incident.AppointmentDate.After(now) {
			out = append(out, incident)
		}
	}
	sortByAppointment(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortByAppointment(incidents []entity.Incident) {
	sort.SliceStable(incidents, func(i, j int) bool {
		return incidents[i].AppointmentDate.Before(incidents[j].AppointmentDate)
	})
}
