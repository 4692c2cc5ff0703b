package usecase

import (
	"dental-center/internal/domain/entity"
)

// Reduce computes the state that follows action.
//
// state is never modified. Collections touched by the action are rebuilt;
// untouched ones are shared with state, which is safe because no transition
// mutates a slice in place. Unknown or nil actions return state unchanged.
func Reduce(state *entity.AppState, action Action) *entity.AppState {
	if state == nil {
		state = (*entity.AppState)(nil).Normalized()
	}

	switch a := action.(type) {
	case LoginAction:
		next := *state
		user := a.User.Clone()
		next.CurrentUser = &user
		next.IsAuthenticated = true
		return &next

	case LogoutAction:
		next := *state
		next.CurrentUser = nil
		next.IsAuthenticated = false
		return &next

	case AddPatientAction:
		if state.HasPatient(a.Patient.ID) {
			return state
		}
		next := *state
		next.Patients = appendCopy(state.Patients, a.Patient)
		return &next

	case UpdatePatientAction:
		idx := indexOfPatient(state.Patients, a.ID)
		if idx < 0 {
			return state
		}
		next := *state
		next.Patients = append([]entity.Patient(nil), state.Patients...)
		next.Patients[idx] = applyPatientPatch(next.Patients[idx], a.Patch)
		return &next

	case DeletePatientAction:
		if !state.HasPatient(a.ID) {
			return state
		}
		next := *state
		next.Patients = make([]entity.Patient, 0, len(state.Patients)-1)
		for _, p := range state.Patients {
			if p.ID != a.ID {
				next.Patients = append(next.Patients, p)
			}
		}
		// cascade: an incident never outlives its patient
		next.Incidents = make([]entity.Incident, 0, len(state.Incidents))
		for _, inc := range state.Incidents {
			if inc.PatientID != a.ID {
				next.Incidents = append(next.Incidents, inc)
			}
		}
		return &next

	case AddIncidentAction:
		if !state.HasPatient(a.Incident.PatientID) || state.FindIncident(a.Incident.ID) != nil {
			return state
		}
		next := *state
		next.Incidents = appendCopy(state.Incidents, a.Incident.Clone())
		return &next

	case UpdateIncidentAction:
		idx := indexOfIncident(state.Incidents, a.ID)
		if idx < 0 {
			return state
		}
		if a.Patch.PatientID != nil && !state.HasPatient(*a.Patch.PatientID) {
			return state
		}
		next := *state
		next.Incidents = append([]entity.Incident(nil), state.Incidents...)
		next.Incidents[idx] = applyIncidentPatch(next.Incidents[idx], a)
		return &next

	case DeleteIncidentAction:
		idx := indexOfIncident(state.Incidents, a.ID)
		if idx < 0 {
			return state
		}
		next := *state
		next.Incidents = make([]entity.Incident, 0, len(state.Incidents)-1)
		next.Incidents = append(next.Incidents, state.Incidents[:idx]...)
		next.Incidents = append(next.Incidents, state.Incidents[idx+1:]...)
		return &next

	case LoadDataAction:
		if a.State == nil {
			return state
		}
		return a.State.Normalized()
	}

	return state
}

// appendCopy appends v to a fresh copy of s so the original backing array is never shared
func appendCopy[T any](s []T, v T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}

func indexOfPatient(patients []entity.Patient, id string) int {
	for i := range patients {
		if patients[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfIncident(incidents []entity.Incident, id string) int {
	for i := range incidents {
		if incidents[i].ID == id {
			return i
		}
	}
	return -1
}

func applyPatientPatch(p entity.Patient, patch entity.PatientPatch) entity.Patient {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.DOB != nil {
		p.DOB = *patch.DOB
	}
	if patch.Contact != nil {
		p.Contact = *patch.Contact
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.HealthInfo != nil {
		p.HealthInfo = *patch.HealthInfo
	}
	return p
}

func applyIncidentPatch(inc entity.Incident, a UpdateIncidentAction) entity.Incident {
	patch := a.Patch
	inc = inc.Clone()
	if patch.PatientID != nil {
		inc.PatientID = *patch.PatientID
	}
	if patch.Title != nil {
		inc.Title = *patch.Title
	}
	if patch.Description != nil {
		inc.Description = *patch.Description
	}
	if patch.Comments != nil {
		inc.Comments = *patch.Comments
	}
	if patch.AppointmentDate != nil {
		inc.AppointmentDate = *patch.AppointmentDate
	}
	if patch.Cost != nil {
		cost := *patch.Cost
		inc.Cost = &cost
	}
	if patch.Treatment != nil {
		treatment := *patch.Treatment
		inc.Treatment = &treatment
	}
	if patch.Status != nil {
		inc.Status = *patch.Status
	}
	if patch.NextAppointmentDate != nil {
		next := *patch.NextAppointmentDate
		inc.NextAppointmentDate = &next
	}
	if patch.Files != nil {
		inc.Files = entity.CloneFiles(*patch.Files)
	}
	if patch.ClearCost {
		inc.Cost = nil
	}
	if patch.ClearTreatment {
		inc.Treatment = nil
	}
	if patch.ClearNextAppointmentDate {
		inc.NextAppointmentDate = nil
	}

	// updatedAt only moves forward and never precedes createdAt
	updatedAt := a.At
	if inc.UpdatedAt.After(updatedAt) {
		updatedAt = inc.UpdatedAt
	}
	if inc.CreatedAt.After(updatedAt) {
		updatedAt = inc.CreatedAt
	}
	inc.UpdatedAt = updatedAt
	return inc
}
