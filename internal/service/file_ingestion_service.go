package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"dental-center/config"
	"dental-center/internal/domain/entity"
	"dental-center/internal/infrastructure/metrics"
	"dental-center/pkg/dataurl"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/semaphore"
)

var (
	ErrFileRead     = errors.New("failed to read file")
	ErrFileTooLarge = errors.New("file exceeds the upload size limit")
)

// FileBlob is a named binary handed in by the caller for ingestion.
// Type may be empty, in which case the content type is sniffed.
type FileBlob struct {
	Name string
	Type string
	Size int64
	Open func() (io.ReadCloser, error)
}

// NewFileBlobFromBytes wraps an in-memory payload
func NewFileBlobFromBytes(name, mimeType string, data []byte) FileBlob {
	return FileBlob{
		Name: name,
		Type: mimeType,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// NewFileBlobFromPath describes a file on fsys; the content is only read at ingestion time
func NewFileBlobFromPath(fsys afero.Fs, path string) (FileBlob, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return FileBlob{}, fmt.Errorf("%w: %w", ErrFileRead, err)
	}
	if info.IsDir() {
		return FileBlob{}, fmt.Errorf("%w: %s is a directory", ErrFileRead, path)
	}
	return FileBlob{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) {
			return fsys.Open(path)
		},
	}, nil
}

type FileIngestionService interface {
	// Ingest reads blob and returns a self-contained attachment whose URL embeds the content
	Ingest(ctx context.Context, blob FileBlob) (entity.FileAttachment, error)
}

type fileIngestionService struct {
	log      *logrus.Logger
	metrics  *metrics.StoreMetrics
	sem      *semaphore.Weighted
	maxBytes int64
	timeout  time.Duration
	now      func() time.Time
	newID    func() string
}

// IngestionOption customises a FileIngestionService
type IngestionOption func(*fileIngestionService)

// WithIngestionClock overrides the clock used for uploadedAt
func WithIngestionClock(now func() time.Time) IngestionOption {
	return func(s *fileIngestionService) { s.now = now }
}

// WithIngestionIDGenerator overrides attachment id generation
func WithIngestionIDGenerator(newID func() string) IngestionOption {
	return func(s *fileIngestionService) { s.newID = newID }
}

func NewFileIngestionService(cfg config.UploadConfig, log *logrus.Logger, m *metrics.StoreMetrics, opts ...IngestionOption) FileIngestionService {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	s := &fileIngestionService{
		log:      log,
		metrics:  m,
		sem:      semaphore.NewWeighted(int64(concurrency)),
		maxBytes: cfg.MaxBytes,
		timeout:  cfg.Timeout,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return "f" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type readResult struct {
	data []byte
	err  error
}

func (s *fileIngestionService) Ingest(ctx context.Context, blob FileBlob) (entity.FileAttachment, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if s.maxBytes > 0 && blob.Size > s.maxBytes {
		return entity.FileAttachment{}, s.fail(blob, "too_large", fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, blob.Name, blob.Size))
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return entity.FileAttachment{}, s.fail(blob, "cancelled", err)
	}

	// The read runs on its own goroutine so a stuck reader cannot outlive ctx for the caller.
	// It keeps its slot until the read actually returns.
	resultCh := make(chan readResult, 1)
	go func() {
		defer s.sem.Release(1)
		data, err := s.read(blob)
		resultCh <- readResult{data: data, err: err}
	}()

	var res readResult
	select {
	case <-ctx.Done():
		return entity.FileAttachment{}, s.fail(blob, "cancelled", ctx.Err())
	case res = <-resultCh:
	}
	if res.err != nil {
		reason := "read"
		if errors.Is(res.err, ErrFileTooLarge) {
			reason = "too_large"
		}
		return entity.FileAttachment{}, s.fail(blob, reason, res.err)
	}

	mediaType := mediaTypeOf(blob.Type, res.data)
	attachment := entity.FileAttachment{
		ID:         s.newID(),
		Name:       blob.Name,
		URL:        dataurl.Encode(mediaType, res.data),
		Type:       mediaType,
		Size:       int64(len(res.data)),
		UploadedAt: s.now(),
	}

	s.metrics.IngestedBytes.Add(float64(attachment.Size))
	s.log.WithFields(logrus.Fields{
		"file_id": attachment.ID,
		"name":    attachment.Name,
		"type":    attachment.Type,
		"size":    attachment.Size,
	}).Debug("File ingested")

	return attachment, nil
}

func (s *fileIngestionService) read(blob FileBlob) ([]byte, error) {
	if blob.Open == nil {
		return nil, fmt.Errorf("%w: %s has no content", ErrFileRead, blob.Name)
	}
	rc, err := blob.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileRead, err)
	}
	defer rc.Close()

	reader := io.Reader(rc)
	if s.maxBytes > 0 {
		reader = io.LimitReader(rc, s.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileRead, err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrFileTooLarge, blob.Name, s.maxBytes)
	}
	return data, nil
}

func (s *fileIngestionService) fail(blob FileBlob, reason string, err error) error {
	s.metrics.IngestFailures.WithLabelValues(reason).Inc()
	s.log.Warnf("Failed to ingest file %s: %+v", blob.Name, err)
	return err
}

// mediaTypeOf prefers the declared type and falls back to content sniffing.
// Parameters (charset=...) are dropped so the value fits a data URL header.
func mediaTypeOf(declared string, data []byte) string {
	mediaType := declared
	if mediaType == "" {
		mediaType = mimetype.Detect(data).String()
	}
	mediaType, _, _ = strings.Cut(mediaType, ";")
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return dataurl.DefaultMediaType
	}
	return mediaType
}
