package cli

import (
	"fmt"

	"dental-center/internal/converter"
	"dental-center/internal/delivery/dto"
	"dental-center/internal/domain/entity"

	"github.com/spf13/cobra"
)

// incidentFlags are shared by `incident add` and `incident update`
type incidentFlags struct {
	patientID   string
	title       string
	description string
	comments    string
	date        string
	cost        string
	treatment   string
	status      string
	nextDate    string
}

func (f *incidentFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.patientID, "patient", "", "patient id")
	flags.StringVar(&f.title, "title", "", "short title")
	flags.StringVar(&f.description, "description", "", "what the appointment is about")
	flags.StringVar(&f.comments, "comments", "", "free text notes")
	flags.StringVar(&f.date, "date", "", "appointment time (RFC3339 or YYYY-MM-DDTHH:MM)")
	flags.StringVar(&f.cost, "cost", "", "treatment cost")
	flags.StringVar(&f.treatment, "treatment", "", "treatment carried out")
	flags.StringVar(&f.status, "status", "", "Scheduled, Completed, Pending or Cancelled")
	flags.StringVar(&f.nextDate, "next-date", "", "next appointment time")
}

func newIncidentCommand(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "incident",
		Aliases: []string{"incidents", "appointment", "appointments"},
		Short:   "Manage appointments and treatments",
	}
	cmd.AddCommand(
		newIncidentListCommand(app),
		newIncidentShowCommand(app),
		newIncidentAddCommand(app),
		newIncidentUpdateCommand(app),
		newIncidentDeleteCommand(app),
	)
	return cmd
}

func newIncidentListCommand(app *cliApp) *cobra.Command {
	var patientID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments (patients only see their own)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireAuth(app.session.Store)
			if err != nil {
				return err
			}

			state := app.session.Store.Snapshot()
			incidents := make([]entity.Incident, 0)
			for _, incident := range state.Incidents {
				if patientID != "" && incident.PatientID != patientID {
					continue
				}
				if canSeePatient(user, incident.PatientID) {
					incidents = append(incidents, incident)
				}
			}
			return app.printer.print(converter.IncidentsToResponse(incidents, state.Patients))
		},
	}
	cmd.Flags().StringVar(&patientID, "patient", "", "only show appointments of this patient")

	return cmd
}

func newIncidentShowCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one appointment with its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireAuth(app.session.Store)
			if err != nil {
				return err
			}
			incident, ok := app.session.Store.Incident(args[0])
			if !ok || !canSeePatient(user, incident.PatientID) {
				return fmt.Errorf("incident %s not found", args[0])
			}
			patient, _ := app.session.Store.Patient(incident.PatientID)
			return app.printer.print(converter.IncidentToResponse(&incident, patient.Name))
		},
	}
}

func newIncidentAddCommand(app *cliApp) *cobra.Command {
	f := &incidentFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a new appointment for a patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(app.session.Store); err != nil {
				return err
			}

			req := &dto.IncidentRequest{
				PatientID:   f.patientID,
				Title:       f.title,
				Description: f.description,
				Comments:    f.comments,
				Treatment:   changedString(cmd, "treatment", f.treatment),
				Status:      entity.IncidentStatus(f.status),
			}
			if f.date != "" {
				date, err := parseTime(f.date, app.session.Location)
				if err != nil {
					return err
				}
				req.AppointmentDate = date
			}
			var err error
			if req.Cost, err = changedCost(cmd, "cost", f.cost); err != nil {
				return err
			}
			if req.NextAppointmentDate, err = changedTime(cmd, "next-date", f.nextDate, app.session.Location); err != nil {
				return err
			}

			incident, err := app.session.Store.AddIncident(cmd.Context(), req)
			if err != nil {
				return err
			}
			patient, _ := app.session.Store.Patient(incident.PatientID)
			return app.printer.print(converter.IncidentToResponse(&incident, patient.Name))
		},
	}
	f.register(cmd)

	return cmd
}

func newIncidentUpdateCommand(app *cliApp) *cobra.Command {
	f := &incidentFlags{}
	var clearCost, clearTreatment, clearNextDate bool

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of an appointment; only the given flags are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(app.session.Store); err != nil {
				return err
			}

			req := &dto.UpdateIncidentRequest{
				PatientID:   changedString(cmd, "patient", f.patientID),
				Title:       changedString(cmd, "title", f.title),
				Description: changedString(cmd, "description", f.description),
				Comments:    changedString(cmd, "comments", f.comments),
				Treatment:   changedString(cmd, "treatment", f.treatment),
				Status:      changedStatus(cmd, "status", f.status),

				ClearCost:                clearCost,
				ClearTreatment:           clearTreatment,
				ClearNextAppointmentDate: clearNextDate,
			}
			var err error
			if req.AppointmentDate, err = changedTime(cmd, "date", f.date, app.session.Location); err != nil {
				return err
			}
			if req.NextAppointmentDate, err = changedTime(cmd, "next-date", f.nextDate, app.session.Location); err != nil {
				return err
			}
			if req.Cost, err = changedCost(cmd, "cost", f.cost); err != nil {
				return err
			}

			matched, err := app.session.Store.UpdateIncident(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			if !matched {
				return fmt.Errorf("incident %s not found", args[0])
			}
			incident, _ := app.session.Store.Incident(args[0])
			patient, _ := app.session.Store.Patient(incident.PatientID)
			return app.printer.print(converter.IncidentToResponse(&incident, patient.Name))
		},
	}
	f.register(cmd)
	flags := cmd.Flags()
	flags.BoolVar(&clearCost, "clear-cost", false, "remove the recorded cost")
	flags.BoolVar(&clearTreatment, "clear-treatment", false, "remove the recorded treatment")
	flags.BoolVar(&clearNextDate, "clear-next-date", false, "remove the next appointment time")
	cmd.MarkFlagsMutuallyExclusive("cost", "clear-cost")
	cmd.MarkFlagsMutuallyExclusive("treatment", "clear-treatment")
	cmd.MarkFlagsMutuallyExclusive("next-date", "clear-next-date")

	return cmd
}

func newIncidentDeleteCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an appointment and its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(app.session.Store); err != nil {
				return err
			}
			if !app.session.Store.DeleteIncident(cmd.Context(), args[0]) {
				return fmt.Errorf("incident %s not found", args[0])
			}
			return app.printer.message("Incident %s deleted", args[0])
		},
	}
}
