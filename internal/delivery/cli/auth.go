package cli

import (
	"errors"

	"dental-center/internal/converter"
	"dental-center/internal/delivery/dto"
	"dental-center/internal/usecase"

	"github.com/spf13/cobra"
)

var errInvalidCredentials = errors.New("invalid email or password")

func newLoginCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "login EMAIL PASSWORD",
		Short: "Start a session as one of the registered users",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.LoginRequest{Email: args[0], Password: args[1]}
			if err := usecase.ValidateRequest(cmd.Context(), app.validator, &req); err != nil {
				return err
			}
			if !app.session.Store.Login(req.Email, req.Password) {
				return errInvalidCredentials
			}
			return app.printer.print(sessionResponse(app))
		},
	}
}

func newLogoutCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.session.Store.Logout()
			return app.printer.message("Logged out")
		},
	}
}

func newWhoamiCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.printer.print(sessionResponse(app))
		},
	}
}

func newDashboardCommand(app *cliApp) *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard of the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireAuth(app.session.Store)
			if err != nil {
				return err
			}

			if day != "" {
				if _, err := requireAdmin(app.session.Store); err != nil {
					return err
				}
				t, err := parseDay(day, app.session.Location)
				if err != nil {
					return err
				}
				return app.printer.print(app.session.Dashboard.AppointmentsOn(t))
			}

			overview, err := app.session.Dashboard.Overview(user)
			if err != nil {
				return err
			}
			return app.printer.print(&overview)
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "list the appointments of one calendar day (YYYY-MM-DD)")

	return cmd
}

func newResetCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the stored data and start over from the demo records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.session.Store.Reset(cmd.Context())
			return app.printer.message("Stored data cleared")
		},
	}
}

func sessionResponse(app *cliApp) *dto.SessionResponse {
	user := app.session.Store.CurrentUser()
	return &dto.SessionResponse{
		IsAuthenticated: app.session.Store.IsAuthenticated(),
		User:            converter.UserToResponse(user),
	}
}
