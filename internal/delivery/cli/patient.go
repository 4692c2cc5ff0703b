package cli

import (
	"fmt"

	"dental-center/internal/converter"
	"dental-center/internal/delivery/dto"
	"dental-center/internal/domain/entity"

	"github.com/spf13/cobra"
)

func newPatientCommand(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patient",
		Aliases: []string{"patients"},
		Short:   "Manage patients",
	}
	cmd.AddCommand(
		newPatientListCommand(app),
		newPatientAddCommand(app),
		newPatientUpdateCommand(app),
		newPatientDeleteCommand(app),
	)
	return cmd
}

func newPatientListCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List patients (patients only see their own record)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireAuth(app.session.Store)
			if err != nil {
				return err
			}

			patients := make([]entity.Patient, 0)
			for _, patient := range app.session.Store.Patients() {
				if canSeePatient(user, patient.ID) {
					patients = append(patients, patient)
				}
			}
			return app.printer.print(converter.PatientsToResponse(patients))
		},
	}
}

func newPatientAddCommand(app *cliApp) *cobra.Command {
	req := &dto.PatientRequest{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(app.session.Store); err != nil {
				return err
			}

			patient, err := app.session.Store.AddPatient(cmd.Context(), req)
			if err != nil {
				return err
			}
			return app.printer.print(converter.PatientToResponse(&patient))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Name, "name", "", "full name")
	flags.StringVar(&req.DOB, "dob", "", "date of birth (YYYY-MM-DD)")
	flags.StringVar(&req.Contact, "contact", "", "phone number")
	flags.StringVar(&req.Email, "email", "", "email address")
	flags.StringVar(&req.HealthInfo, "health-info", "", "allergies, conditions, medication")

	return cmd
}

func newPatientUpdateCommand(app *cliApp) *cobra.Command {
	var name, dob, contact, email, healthInfo string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a patient; only the given flags are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(app.session.Store); err != nil {
				return err
			}

			req := &dto.UpdatePatientRequest{
				Name:       changedString(cmd, "name", name),
				DOB:        changedString(cmd, "dob", dob),
				Contact:    changedString(cmd, "contact", contact),
				Email:      changedString(cmd, "email", email),
				HealthInfo: changedString(cmd, "health-info", healthInfo),
			}

			matched, err := app.session.Store.UpdatePatient(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			if !matched {
				return fmt.Errorf("patient %s not found", args[0])
			}
			patient, _ := app.session.Store.Patient(args[0])
			return app.printer.print(converter.PatientToResponse(&patient))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "full name")
	flags.StringVar(&dob, "dob", "", "date of birth (YYYY-MM-DD)")
	flags.StringVar(&contact, "contact", "", "phone number")
	flags.StringVar(&email, "email", "", "email address")
	flags.StringVar(&healthInfo, "health-info", "", "allergies, conditions, medication")

	return cmd
}

func newPatientDeleteCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a patient together with all of their appointments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(app.session.Store); err != nil {
				return err
			}
			if !app.session.Store.DeletePatient(cmd.Context(), args[0]) {
				return fmt.Errorf("patient %s not found", args[0])
			}
			return app.printer.message("Patient %s deleted", args[0])
		},
	}
}
