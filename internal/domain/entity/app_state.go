package entity

// StateVersion is written into every persisted document.
// Documents without a version are read as version 1.
const StateVersion = 1

// AppState is the complete snapshot of the store.
// A snapshot is never modified once it has been published; every transition builds a new one.
type AppState struct {
	Users           []User     `json:"users"`
	Patients        []Patient  `json:"patients"`
	Incidents       []Incident `json:"incidents"`
	CurrentUser     *User      `json:"currentUser"`
	IsAuthenticated bool       `json:"isAuthenticated"`
	Version         int        `json:"version,omitempty"`
}

// Clone returns a deep copy of the snapshot
func (s *AppState) Clone() *AppState {
	if s == nil {
		return nil
	}
	out := &AppState{
		Users:           make([]User, len(s.Users)),
		Patients:        make([]Patient, len(s.Patients)),
		Incidents:       make([]Incident, len(s.Incidents)),
		IsAuthenticated: s.IsAuthenticated,
		Version:         s.Version,
	}
	for i := range s.Users {
		out.Users[i] = s.Users[i].Clone()
	}
	copy(out.Patients, s.Patients)
	for i := range s.Incidents {
		out.Incidents[i] = s.Incidents[i].Clone()
	}
	if s.CurrentUser != nil {
		u := s.CurrentUser.Clone()
		out.CurrentUser = &u
	}
	return out
}

// Normalized returns a deep copy with nil collections replaced by empty ones,
// incidents referencing a missing patient dropped, and the session flag
// reconciled with the current user.
func (s *AppState) Normalized() *AppState {
	out := s.Clone()
	if out == nil {
		return &AppState{Users: []User{}, Patients: []Patient{}, Incidents: []Incident{}}
	}
	known := make(map[string]struct{}, len(out.Patients))
	for _, p := range out.Patients {
		known[p.ID] = struct{}{}
	}
	kept := make([]Incident, 0, len(out.Incidents))
	for _, inc := range out.Incidents {
		if _, ok := known[inc.PatientID]; !ok {
			continue
		}
		kept = append(kept, inc)
	}
	out.Incidents = kept
	if out.CurrentUser == nil {
		out.IsAuthenticated = false
	}
	return out
}

// FindUser returns the user with the given id, or nil
func (s *AppState) FindUser(id string) *User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

// FindPatient returns the patient with the given id, or nil
func (s *AppState) FindPatient(id string) *Patient {
	for i := range s.Patients {
		if s.Patients[i].ID == id {
			return &s.Patients[i]
		}
	}
	return nil
}

// FindIncident returns the incident with the given id, or nil
func (s *AppState) FindIncident(id string) *Incident {
	for i := range s.Incidents {
		if s.Incidents[i].ID == id {
			return &s.Incidents[i]
		}
	}
	return nil
}

// HasPatient reports whether a patient with the given id exists
func (s *AppState) HasPatient(id string) bool {
	return s.FindPatient(id) != nil
}
