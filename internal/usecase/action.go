package usecase

import (
	"time"

	"dental-center/internal/domain/entity"
)

// ActionKind names a state transition in logs and metrics
type ActionKind string

const (
	ActionLogin          ActionKind = "LOGIN"
	ActionLogout         ActionKind = "LOGOUT"
	ActionAddPatient     ActionKind = "ADD_PATIENT"
	ActionUpdatePatient  ActionKind = "UPDATE_PATIENT"
	ActionDeletePatient  ActionKind = "DELETE_PATIENT"
	ActionAddIncident    ActionKind = "ADD_INCIDENT"
	ActionUpdateIncident ActionKind = "UPDATE_INCIDENT"
	ActionDeleteIncident ActionKind = "DELETE_INCIDENT"
	ActionLoadData       ActionKind = "LOAD_DATA"
)

// Action is a closed set of transitions accepted by Reduce.
// Only the types declared in this file implement it.
type Action interface {
	Kind() ActionKind
	action()
}

type LoginAction struct {
	User entity.User
}

type LogoutAction struct{}

type AddPatientAction struct {
	Patient entity.Patient
}

type UpdatePatientAction struct {
	ID    string
	Patch entity.PatientPatch
}

type DeletePatientAction struct {
	ID string
}

type AddIncidentAction struct {
	Incident entity.Incident
}

// UpdateIncidentAction merges Patch into the incident and stamps UpdatedAt with At
type UpdateIncidentAction struct {
	ID    string
	Patch entity.IncidentPatch
	At    time.Time
}

type DeleteIncidentAction struct {
	ID string
}

// LoadDataAction replaces the whole state
type LoadDataAction struct {
	State *entity.AppState
}

func (LoginAction) Kind() ActionKind          { return ActionLogin }
func (LogoutAction) Kind() ActionKind         { return ActionLogout }
func (AddPatientAction) Kind() ActionKind     { return ActionAddPatient }
func (UpdatePatientAction) Kind() ActionKind  { return ActionUpdatePatient }
func (DeletePatientAction) Kind() ActionKind  { return ActionDeletePatient }
func (AddIncidentAction) Kind() ActionKind    { return ActionAddIncident }
func (UpdateIncidentAction) Kind() ActionKind { return ActionUpdateIncident }
func (DeleteIncidentAction) Kind() ActionKind { return ActionDeleteIncident }
func (LoadDataAction) Kind() ActionKind       { return ActionLoadData }

func (LoginAction) action()          {}
func (LogoutAction) action()         {}
func (AddPatientAction) action()     {}
func (UpdatePatientAction) action()  {}
func (DeletePatientAction) action()  {}
func (AddIncidentAction) action()    {}
func (UpdateIncidentAction) action() {}
func (DeleteIncidentAction) action() {}
func (LoadDataAction) action()       {}
