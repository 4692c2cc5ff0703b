package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"dental-center/config"
	"dental-center/internal/delivery/dto"
	"dental-center/internal/infrastructure/metrics"
	"dental-center/internal/repository"
	"dental-center/internal/service"
	"dental-center/internal/usecase"
	"dental-center/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// cliHarness runs commands against one in-memory file system, so state carries over between invocations
type cliHarness struct {
	fs afero.Fs
}

func newCLIHarness() *cliHarness {
	return &cliHarness{fs: afero.NewMemMapFs()}
}

func (h *cliHarness) factory(ctx context.Context, _ Options) (*Session, error) {
	log, _ := test.NewNullLogger()
	m := metrics.NewStoreMetrics(prometheus.NewRegistry())

	stateRepo := repository.NewStateRepository(repository.NewFileSlotRepository(h.fs, "/data"), "", log, m)
	persistence := service.NewPersistenceService(stateRepo, log)
	ingestor := service.NewFileIngestionService(
		config.UploadConfig{MaxBytes: 1 << 20, Concurrency: 2, Timeout: 5 * time.Second}, log, m)

	store := usecase.NewClinicStore(log, stateRepo, persistence, ingestor, validator.NewValidator(), usecase.WithMetrics(m))
	if err := store.Hydrate(ctx); err != nil {
		persistence.Stop()
		return nil, err
	}

	now := func() time.Time { return time.Date(2024, 12, 28, 9, 0, 0, 0, time.UTC) }
	return &Session{
		Store:     store,
		Dashboard: usecase.NewDashboardUsecase(store, time.UTC, now),
		FS:        h.fs,
		Location:  time.UTC,
		Close: func(ctx context.Context) error {
			defer persistence.Stop()
			return persistence.Flush(ctx)
		},
	}, nil
}

func (h *cliHarness) run(args ...string) (string, error) {
	var out bytes.Buffer
	err := Run(context.Background(), h.factory, &out, args)
	return out.String(), err
}

func (h *cliHarness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := h.run(args...)
	require.NoError(t, err, "dental %v", args)
	return out
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	h := newCLIHarness()

	out := h.mustRun(t, "whoami")
	assert.Contains(t, out, "Not logged in")

	_, err := h.run("login", "admin@entnt.in", "wrong")
	assert.ErrorIs(t, err, errInvalidCredentials)

	h.mustRun(t, "login", "admin@entnt.in", "admin123")
	out = h.mustRun(t, "whoami")
	assert.Contains(t, out, "admin@entnt.in")
	assert.Contains(t, out, "Admin")

	_, err = h.run("login", "not-an-email", "admin123")
	assert.ErrorIs(t, err, usecase.ErrValidation)
	assert.NotErrorIs(t, err, errInvalidCredentials)

	h.mustRun(t, "logout")
	out = h.mustRun(t, "whoami")
	assert.Contains(t, out, "Not logged in")
}

func TestCommandsRequireSession(t *testing.T) {
	h := newCLIHarness()

	_, err := h.run("patient", "list")
	assert.ErrorIs(t, err, usecase.ErrNotAuthenticated)

	h.mustRun(t, "login", "john@entnt.in", "patient123")
	_, err = h.run("patient", "add", "--name", "Mallory")
	assert.ErrorIs(t, err, usecase.ErrForbidden)
	_, err = h.run("dashboard", "--day", "2024-12-28")
	assert.ErrorIs(t, err, usecase.ErrForbidden)
}

func TestPatientSeesOnlyOwnRecords(t *testing.T) {
	h := newCLIHarness()
	h.mustRun(t, "login", "jane@entnt.in", "patient123")

	var patients []dto.PatientResponse
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "patient", "list", "--format", "json")), &patients))
	require.Len(t, patients, 1)
	assert.Equal(t, "p2", patients[0].ID)

	var incidents []dto.IncidentResponse
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "incident", "list", "--format", "json")), &incidents))
	require.Len(t, incidents, 1)
	assert.Equal(t, "i2", incidents[0].ID)

	_, err := h.run("incident", "show", "i1")
	assert.Error(t, err)

	out := h.mustRun(t, "dashboard")
	assert.Contains(t, out, "Upcoming appointments")
	assert.Contains(t, out, "Tooth Filling")
}

func TestAdminManagesPatients(t *testing.T) {
	h := newCLIHarness()
	h.mustRun(t, "login", "admin@entnt.in", "admin123")

	_, err := h.run("patient", "add", "--name", "Alice Brown", "--dob", "1992-03-04", "--contact", "555")
	assert.ErrorIs(t, err, usecase.ErrValidation)

	var created dto.PatientResponse
	out := h.mustRun(t, "patient", "add", "--format", "json",
		"--name", "Alice Brown", "--dob", "1992-03-04", "--contact", "555", "--email", "alice@entnt.in")
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "Alice Brown", created.Name)
	require.NotEmpty(t, created.ID)

	h.mustRun(t, "patient", "update", created.ID, "--contact", "556")

	var listed []map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(h.mustRun(t, "patient", "list", "--format", "yaml")), &listed))
	require.Len(t, listed, 3)
	assert.Equal(t, "Alice Brown", listed[2]["name"])
	assert.Equal(t, "556", listed[2]["contact"])

	h.mustRun(t, "patient", "delete", "p1")
	var incidents []dto.IncidentResponse
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "incident", "list", "--format", "json")), &incidents))
	require.Len(t, incidents, 1, "appointments of a deleted patient go with it")
	assert.Equal(t, "p2", incidents[0].PatientID)

	_, err = h.run("patient", "delete", "p1")
	assert.Error(t, err)
}

func TestAdminManagesIncidents(t *testing.T) {
	h := newCLIHarness()
	h.mustRun(t, "login", "admin@entnt.in", "admin123")

	_, err := h.run("incident", "add", "--patient", "p404", "--title", "Checkup",
		"--description", "Yearly checkup", "--date", "2025-02-01T10:00")
	assert.ErrorIs(t, err, usecase.ErrPatientNotFound)

	var created dto.IncidentResponse
	out := h.mustRun(t, "incident", "add", "--format", "json", "--patient", "p2", "--title", "Checkup",
		"--description", "Yearly checkup", "--date", "2025-02-01T10:00", "--cost", "45.50")
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "Jane Smith", created.PatientName)
	assert.Equal(t, time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC), created.AppointmentDate.UTC())
	assert.Equal(t, "Scheduled", string(created.Status))

	var updated dto.IncidentResponse
	out = h.mustRun(t, "incident", "update", created.ID, "--format", "json", "--status", "Completed")
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, "Completed", string(updated.Status))
	assert.Equal(t, "Checkup", updated.Title)
	require.NotNil(t, updated.Cost)
	assert.Equal(t, "45.5", updated.Cost.String())

	_, err = h.run("incident", "update", created.ID, "--status", "Lost")
	assert.ErrorIs(t, err, usecase.ErrValidation)

	_, err = h.run("incident", "add", "--patient", "p2", "--title", "Checkup",
		"--description", "Yearly checkup", "--date", "next tuesday")
	assert.Error(t, err)

	var cleared dto.IncidentResponse
	out = h.mustRun(t, "incident", "update", created.ID, "--format", "json", "--clear-cost", "--clear-next-date")
	require.NoError(t, json.Unmarshal([]byte(out), &cleared))
	assert.Nil(t, cleared.Cost)
	assert.Nil(t, cleared.NextAppointmentDate)
	assert.Equal(t, "Completed", string(cleared.Status))

	_, err = h.run("incident", "update", created.ID, "--cost", "5", "--clear-cost")
	assert.Error(t, err)

	h.mustRun(t, "incident", "delete", created.ID)
	_, err = h.run("incident", "show", created.ID)
	assert.Error(t, err)
}

func TestFileUploadAndExport(t *testing.T) {
	h := newCLIHarness()
	payload := append(append([]byte{}, pngHeader...), []byte("scan data")...)
	require.NoError(t, afero.WriteFile(h.fs, "/scans/xray.png", payload, 0o644))
	require.NoError(t, afero.WriteFile(h.fs, "/scans/notes.txt", []byte("follow up in 6 months"), 0o644))

	h.mustRun(t, "login", "admin@entnt.in", "admin123")

	var files []dto.FileResponse
	out := h.mustRun(t, "file", "upload", "i1", "/scans/xray.png", "/scans/notes.txt", "--format", "json")
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	require.Len(t, files, 2)

	byName := make(map[string]dto.FileResponse, len(files))
	for _, file := range files {
		byName[file.Name] = file
	}
	assert.Equal(t, "image/png", byName["xray.png"].Type)
	assert.Equal(t, int64(len(payload)), byName["xray.png"].Size)
	assert.Contains(t, byName["notes.txt"].Type, "text/plain")

	h.mustRun(t, "logout")
	h.mustRun(t, "login", "john@entnt.in", "patient123")

	h.mustRun(t, "file", "export", "i1", byName["xray.png"].ID, "--out", "/export/xray.png")
	exported, err := afero.ReadFile(h.fs, "/export/xray.png")
	require.NoError(t, err)
	assert.Equal(t, payload, exported)

	_, err = h.run("file", "remove", "i1", byName["xray.png"].ID)
	assert.ErrorIs(t, err, usecase.ErrForbidden)

	h.mustRun(t, "logout")
	h.mustRun(t, "login", "admin@entnt.in", "admin123")
	h.mustRun(t, "file", "remove", "i1", byName["xray.png"].ID)

	var incident dto.IncidentResponse
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "incident", "show", "i1", "--format", "json")), &incident))
	require.Len(t, incident.Files, 1)
	assert.Equal(t, "notes.txt", incident.Files[0].Name)

	_, err = h.run("file", "upload", "i1", "/scans/missing.png")
	assert.Error(t, err)
}

func TestResetRestoresSeed(t *testing.T) {
	h := newCLIHarness()
	h.mustRun(t, "login", "admin@entnt.in", "admin123")
	h.mustRun(t, "patient", "delete", "p2")

	h.mustRun(t, "reset")
	exists, err := afero.Exists(h.fs, "/data")
	require.NoError(t, err)
	if exists {
		entries, err := afero.ReadDir(h.fs, "/data")
		require.NoError(t, err)
		assert.Empty(t, entries, "reset leaves the slot empty")
	}

	out := h.mustRun(t, "whoami")
	assert.Contains(t, out, "Not logged in")

	h.mustRun(t, "login", "admin@entnt.in", "admin123")
	var patients []dto.PatientResponse
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "patient", "list", "--format", "json")), &patients))
	assert.Len(t, patients, 2)
}

func TestDashboardOutput(t *testing.T) {
	h := newCLIHarness()
	h.mustRun(t, "login", "admin@entnt.in", "admin123")

	var overview dto.DashboardResponse
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "dashboard", "--format", "json")), &overview))
	require.NotNil(t, overview.Stats)
	assert.Equal(t, 3, overview.Stats.TotalAppointments)
	assert.Equal(t, 1, overview.Stats.TodayAppointments)
	require.Len(t, overview.Top, 2)
	assert.Equal(t, "John Doe", overview.Top[0].Name)

	out := h.mustRun(t, "dashboard", "--day", "2024-12-25")
	assert.Contains(t, out, "Routine Cleaning")
	assert.NotContains(t, out, "Tooth Filling")
}

func TestUnknownFormat(t *testing.T) {
	h := newCLIHarness()
	_, err := h.run("whoami", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
