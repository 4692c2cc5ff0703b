package cli

import (
	"fmt"

	"dental-center/internal/converter"
	"dental-center/internal/delivery/dto"
	"dental-center/internal/service"
	"dental-center/pkg/dataurl"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newFileCommand(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "file",
		Aliases: []string{"files"},
		Short:   "Attach, remove and export treatment documents",
	}
	cmd.AddCommand(
		newFileUploadCommand(app),
		newFileRemoveCommand(app),
		newFileExportCommand(app),
	)
	return cmd
}

func newFileUploadCommand(app *cliApp) *cobra.Command {
	var mimeType string

	cmd := &cobra.Command{
		Use:   "upload INCIDENT PATH...",
		Short: "Attach one or more files to an appointment",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(app.session.Store); err != nil {
				return err
			}

			blobs := make([]service.FileBlob, 0, len(args)-1)
			for _, path := range args[1:] {
				blob, err := service.NewFileBlobFromPath(app.session.FS, path)
				if err != nil {
					return err
				}
				blob.Type = mimeType
				blobs = append(blobs, blob)
			}

			attachments, err := app.session.Store.UploadFiles(cmd.Context(), args[0], blobs...)
			files := make([]dto.FileResponse, 0, len(attachments))
			for i := range attachments {
				files = append(files, converter.FileToResponse(&attachments[i]))
			}
			if len(files) > 0 {
				if printErr := app.printer.print(files); printErr != nil {
					return printErr
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&mimeType, "type", "", "MIME type of the files (detected from content when empty)")

	return cmd
}

func newFileRemoveCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "remove INCIDENT FILE",
		Short: "Remove an attached file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(app.session.Store); err != nil {
				return err
			}
			if !app.session.Store.RemoveFile(cmd.Context(), args[0], args[1]) {
				return fmt.Errorf("file %s not found on incident %s", args[1], args[0])
			}
			return app.printer.message("File %s removed", args[1])
		},
	}
}

func newFileExportCommand(app *cliApp) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export INCIDENT FILE",
		Short: "Write the content of an attached file to disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireAuth(app.session.Store)
			if err != nil {
				return err
			}

			incident, ok := app.session.Store.Incident(args[0])
			if !ok || !canSeePatient(user, incident.PatientID) {
				return fmt.Errorf("incident %s not found", args[0])
			}
			idx := incident.FindFile(args[1])
			if idx < 0 {
				return fmt.Errorf("file %s not found on incident %s", args[1], args[0])
			}
			file := incident.Files[idx]

			_, payload, err := dataurl.Decode(file.URL)
			if err != nil {
				return fmt.Errorf("file %s: %w", file.ID, err)
			}
			if outPath == "" {
				outPath = file.Name
			}
			if err := afero.WriteFile(app.session.FS, outPath, payload, 0o640); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			return app.printer.message("Wrote %d bytes to %s", len(payload), outPath)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "destination path (defaults to the file name)")

	return cmd
}
