package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"dental-center/pkg/validator"

	"github.com/spf13/cobra"
)

const closeTimeout = 10 * time.Second

// cliApp carries state shared by the commands of one invocation
type cliApp struct {
	factory   SessionFactory
	opts      Options
	session   *Session
	printer   *printer
	validator *validator.CustomValidator
}

// Run executes the `dental` command tree with args. Output is written to out.
// The session is always closed, so committed changes are flushed even when a command fails.
func Run(ctx context.Context, factory SessionFactory, out io.Writer, args []string) error {
	app := &cliApp{factory: factory, validator: validator.NewValidator()}
	root := newRootCommand(app, out)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if closeErr := app.close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}

func newRootCommand(app *cliApp, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "dental",
		Short:         "Manage patients, appointments and treatment files of the dental center",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newPrinter(out, app.opts.Format)
			if err != nil {
				return err
			}
			app.printer = p

			session, err := app.factory(cmd.Context(), app.opts)
			if err != nil {
				return err
			}
			app.session = session
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	root.PersistentFlags().StringVar(&app.opts.ConfigPath, "config", ".env", "path to the env config file")
	root.PersistentFlags().StringVar(&app.opts.Format, "format", FormatText, "output format: text, json or yaml")
	root.PersistentFlags().BoolVarP(&app.opts.Verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newWhoamiCommand(app),
		newPatientCommand(app),
		newIncidentCommand(app),
		newFileCommand(app),
		newDashboardCommand(app),
		newResetCommand(app),
	)

	return root
}

func (a *cliApp) close() error {
	if a.session == nil || a.session.Close == nil {
		return nil
	}
	session := a.session
	a.session = nil

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := session.Close(ctx); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
