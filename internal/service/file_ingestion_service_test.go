package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"dental-center/config"
	"dental-center/internal/infrastructure/metrics"
	"dental-center/pkg/dataurl"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ingestTime = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestIngestion(t *testing.T, cfg config.UploadConfig) (FileIngestionService, *metrics.StoreMetrics) {
	t.Helper()
	log, _ := test.NewNullLogger()
	m := metrics.NewStoreMetrics(prometheus.NewRegistry())
	svc := NewFileIngestionService(cfg, log, m,
		WithIngestionClock(func() time.Time { return ingestTime }),
		WithIngestionIDGenerator(func() string { return "f-test" }),
	)
	return svc, m
}

func defaultUploadConfig() config.UploadConfig {
	return config.UploadConfig{MaxBytes: 1 << 20, Concurrency: 2, Timeout: 5 * time.Second}
}

func TestIngestDeclaredType(t *testing.T) {
	svc, m := newTestIngestion(t, defaultUploadConfig())

	att, err := svc.Ingest(context.Background(), NewFileBlobFromBytes("notes.txt", "text/plain", []byte("hello")))
	require.NoError(t, err)

	assert.Equal(t, "f-test", att.ID)
	assert.Equal(t, "notes.txt", att.Name)
	assert.Equal(t, "text/plain", att.Type)
	assert.Equal(t, int64(5), att.Size)
	assert.Equal(t, ingestTime, att.UploadedAt)
	assert.Equal(t, "data:text/plain;base64,aGVsbG8=", att.URL)
	assert.Equal(t, 5.0, testutil.ToFloat64(m.IngestedBytes))
}

func TestIngestSniffsType(t *testing.T) {
	svc, _ := newTestIngestion(t, defaultUploadConfig())
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	att, err := svc.Ingest(context.Background(), NewFileBlobFromBytes("xray", "", png))
	require.NoError(t, err)
	assert.Equal(t, "image/png", att.Type)

	mediaType, payload, err := dataurl.Decode(att.URL)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mediaType)
	assert.Equal(t, png, payload)
}

func TestIngestDropsTypeParameters(t *testing.T) {
	svc, _ := newTestIngestion(t, defaultUploadConfig())

	att, err := svc.Ingest(context.Background(), NewFileBlobFromBytes("notes", "", []byte("plain text notes")))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", att.Type)
	assert.True(t, strings.HasPrefix(att.URL, "data:text/plain;base64,"))
}

func TestIngestSizeIsBytesRead(t *testing.T) {
	svc, _ := newTestIngestion(t, defaultUploadConfig())
	blob := NewFileBlobFromBytes("scan.pdf", "application/pdf", []byte("%PDF-1.4"))
	blob.Size = 999 // declared sizes are not trusted

	att, err := svc.Ingest(context.Background(), blob)
	require.NoError(t, err)
	assert.Equal(t, int64(8), att.Size)
}

func TestIngestTooLarge(t *testing.T) {
	cfg := defaultUploadConfig()
	cfg.MaxBytes = 4
	svc, m := newTestIngestion(t, cfg)

	_, err := svc.Ingest(context.Background(), NewFileBlobFromBytes("big.bin", "", []byte("12345")))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	// a blob that under-reports its size is still cut off while reading
	blob := NewFileBlobFromBytes("liar.bin", "", []byte("123456"))
	blob.Size = 1
	_, err = svc.Ingest(context.Background(), blob)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.IngestFailures.WithLabelValues("too_large")))
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestIngestReadFailure(t *testing.T) {
	svc, m := newTestIngestion(t, defaultUploadConfig())

	blob := FileBlob{Name: "broken", Open: func() (io.ReadCloser, error) { return io.NopCloser(errReader{}), nil }}
	_, err := svc.Ingest(context.Background(), blob)
	assert.ErrorIs(t, err, ErrFileRead)
	assert.ErrorContains(t, err, "disk on fire")

	_, err = svc.Ingest(context.Background(), FileBlob{Name: "no content"})
	assert.ErrorIs(t, err, ErrFileRead)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.IngestFailures.WithLabelValues("read")))
}

// blockingReader never returns until released
type blockingReader struct {
	release chan struct{}
}

func (r blockingReader) Read([]byte) (int, error) {
	<-r.release
	return 0, io.EOF
}

func TestIngestCancellation(t *testing.T) {
	svc, m := newTestIngestion(t, defaultUploadConfig())
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	blob := FileBlob{Name: "slow", Open: func() (io.ReadCloser, error) {
		return io.NopCloser(blockingReader{release: release}), nil
	}}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Ingest(ctx, blob)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("ingestion did not stop on cancellation")
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IngestFailures.WithLabelValues("cancelled")))
}

func TestIngestTimeout(t *testing.T) {
	cfg := defaultUploadConfig()
	cfg.Timeout = 20 * time.Millisecond
	svc, _ := newTestIngestion(t, cfg)
	release := make(chan struct{})
	defer close(release)

	blob := FileBlob{Name: "slow", Open: func() (io.ReadCloser, error) {
		return io.NopCloser(blockingReader{release: release}), nil
	}}
	_, err := svc.Ingest(context.Background(), blob)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIngestSlotHeldUntilStuckReadReturns(t *testing.T) {
	cfg := defaultUploadConfig()
	cfg.Concurrency = 1
	cfg.Timeout = 20 * time.Millisecond
	svc, m := newTestIngestion(t, cfg)
	release := make(chan struct{})

	stuck := FileBlob{Name: "stuck", Open: func() (io.ReadCloser, error) {
		return io.NopCloser(blockingReader{release: release}), nil
	}}
	_, err := svc.Ingest(context.Background(), stuck)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// the abandoned read still occupies the only slot
	_, err = svc.Ingest(context.Background(), NewFileBlobFromBytes("notes.txt", "text/plain", []byte("hello")))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IngestFailures.WithLabelValues("cancelled")))

	close(release)
	require.Eventually(t, func() bool {
		_, err := svc.Ingest(context.Background(), NewFileBlobFromBytes("notes.txt", "text/plain", []byte("hello")))
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

func TestNewFileBlobFromPath(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/uploads/report.txt", []byte("all good"), 0o644))

	blob, err := NewFileBlobFromPath(fsys, "/uploads/report.txt")
	require.NoError(t, err)
	assert.Equal(t, "report.txt", blob.Name)
	assert.Equal(t, int64(8), blob.Size)

	svc, _ := newTestIngestion(t, defaultUploadConfig())
	att, err := svc.Ingest(context.Background(), blob)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", att.Type)

	_, err = NewFileBlobFromPath(fsys, "/uploads/missing.txt")
	assert.ErrorIs(t, err, ErrFileRead)

	_, err = NewFileBlobFromPath(fsys, "/uploads")
	assert.ErrorIs(t, err, ErrFileRead)
}
