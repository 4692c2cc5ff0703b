package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"dental-center/internal/converter"
	"dental-center/internal/delivery/dto"
	"dental-center/internal/domain/entity"
	"dental-center/internal/domain/repository"
	"dental-center/internal/infrastructure/metrics"
	"dental-center/internal/service"
	"dental-center/pkg/validator"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

var (
	ErrPatientNotFound  = errors.New("patient not found")
	ErrIncidentNotFound = errors.New("incident not found")
	ErrValidation       = errors.New("validation failed")
	ErrAlreadyHydrated  = errors.New("store already hydrated")
	ErrNotAuthenticated = errors.New("not logged in")
	ErrForbidden        = errors.New("insufficient permissions")
)

// SnapshotPersister receives every committed snapshot. Enqueue must not block.
type SnapshotPersister interface {
	Enqueue(state *entity.AppState)
	Flush(ctx context.Context) error
}

// ClinicStore is the single owner of the application state.
// Every mutation goes through Reduce; readers always get deep copies.
type ClinicStore interface {
	// Hydrate loads the persisted state once, before any mutation.
	// The built-in seed is kept when nothing usable is stored.
	Hydrate(ctx context.Context) error
	// Reset clears the durable slot and restores the seed in memory
	Reset(ctx context.Context)

	Login(email, password string) bool
	Logout()

	AddPatient(ctx context.Context, req *dto.PatientRequest) (entity.Patient, error)
	UpdatePatient(ctx context.Context, id string, req *dto.UpdatePatientRequest) (bool, error)
	DeletePatient(ctx context.Context, id string) bool

	AddIncident(ctx context.Context, req *dto.IncidentRequest) (entity.Incident, error)
	UpdateIncident(ctx context.Context, id string, req *dto.UpdateIncidentRequest) (bool, error)
	DeleteIncident(ctx context.Context, id string) bool

	UploadFile(ctx context.Context, incidentID string, blob service.FileBlob) (entity.FileAttachment, error)
	UploadFiles(ctx context.Context, incidentID string, blobs ...service.FileBlob) ([]entity.FileAttachment, error)
	RemoveFile(ctx context.Context, incidentID, fileID string) bool

	Snapshot() *entity.AppState
	Users() []entity.User
	Patients() []entity.Patient
	Incidents() []entity.Incident
	CurrentUser() *entity.User
	IsAuthenticated() bool
	Patient(id string) (entity.Patient, bool)
	Incident(id string) (entity.Incident, bool)
	IncidentsForPatient(patientID string) []entity.Incident

	// Subscribe registers fn for every committed snapshot, in commit order.
	// fn must not mutate the store. The returned func unregisters it.
	Subscribe(fn func(*entity.AppState)) func()
}

type clinicStore struct {
	log       *logrus.Logger
	stateRepo repository.StateRepository
	persister SnapshotPersister
	ingestor  service.FileIngestionService
	validator *validator.CustomValidator
	metrics   *metrics.StoreMetrics
	now       func() time.Time
	newID     func(prefix string) string
	seed      *entity.AppState

	mu       sync.RWMutex
	state    *entity.AppState
	hydrated bool

	// held from commit until subscribers ran, so notifications keep commit order
	notifyMu sync.Mutex

	subsMu      sync.RWMutex
	subscribers map[int]func(*entity.AppState)
	nextSubID   int
}

// StoreOption customises a ClinicStore
type StoreOption func(*clinicStore)

// WithClock overrides the clock used for createdAt / updatedAt
func WithClock(now func() time.Time) StoreOption {
	return func(s *clinicStore) { s.now = now }
}

// WithIDGenerator overrides id generation; prefix is "p" for patients and "i" for incidents
func WithIDGenerator(newID func(prefix string) string) StoreOption {
	return func(s *clinicStore) { s.newID = newID }
}

// WithSeed replaces the built-in seed state
func WithSeed(seed *entity.AppState) StoreOption {
	return func(s *clinicStore) { s.seed = seed.Normalized() }
}

func WithMetrics(m *metrics.StoreMetrics) StoreOption {
	return func(s *clinicStore) { s.metrics = m }
}

func NewClinicStore(
	log *logrus.Logger,
	stateRepo repository.StateRepository,
	persister SnapshotPersister,
	ingestor service.FileIngestionService,
	validator *validator.CustomValidator,
	opts ...StoreOption,
) ClinicStore {
	s := &clinicStore{
		log:         log,
		stateRepo:   stateRepo,
		persister:   persister,
		ingestor:    ingestor,
		validator:   validator,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       func(prefix string) string { return prefix + uuid.NewString() },
		seed:        entity.SeedState(),
		subscribers: make(map[int]func(*entity.AppState)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewStoreMetrics(prometheus.NewRegistry())
	}
	s.state = s.seed.Normalized()
	return s
}

// =============================================================================
// Lifecycle
// =============================================================================

func (s *clinicStore) Hydrate(ctx context.Context) error {
	// loaded data is already durable, so hydration never writes back
	_, err := s.apply(false, func(cur *entity.AppState) (Action, error) {
		if s.hydrated {
			return nil, ErrAlreadyHydrated
		}
		s.hydrated = true

		loaded, ok := s.stateRepo.Load(ctx)
		if !ok {
			s.log.Info("No persisted state found, starting from seed data")
			return nil, nil
		}
		s.log.Infof("Loaded persisted state: %d patients, %d incidents", len(loaded.Patients), len(loaded.Incidents))
		return LoadDataAction{State: loaded}, nil
	})
	return err
}

func (s *clinicStore) Reset(ctx context.Context) {
	// the slot stays empty until the next mutation
	_, _ = s.apply(false, func(cur *entity.AppState) (Action, error) {
		if s.persister != nil {
			if err := s.persister.Flush(ctx); err != nil {
				s.log.Warnf("Failed to flush pending state before reset: %+v", err)
			}
		}
		s.stateRepo.Clear(ctx)
		s.hydrated = true
		return LoadDataAction{State: s.seed}, nil
	})
	s.log.Info("State reset to seed data")
}

// =============================================================================
// Session
// =============================================================================

func (s *clinicStore) Login(email, password string) bool {
	var user *entity.User
	_, _ = s.apply(true, func(cur *entity.AppState) (Action, error) {
		var matches []*entity.User
		for i := range cur.Users {
			if cur.Users[i].Email == email && cur.Users[i].Password == password {
				matches = append(matches, &cur.Users[i])
			}
		}
		if len(matches) != 1 {
			return nil, nil
		}
		user = matches[0]
		return LoginAction{User: *user}, nil
	})
	if user == nil {
		s.log.Debugf("Login rejected for %s", email)
		return false
	}
	return true
}

func (s *clinicStore) Logout() {
	_, _ = s.apply(true, func(cur *entity.AppState) (Action, error) {
		return LogoutAction{}, nil
	})
}

// =============================================================================
// Patients
// =============================================================================

func (s *clinicStore) AddPatient(ctx context.Context, req *dto.PatientRequest) (entity.Patient, error) {
	if err := s.validate(ctx, req); err != nil {
		return entity.Patient{}, err
	}

	patient := converter.PatientRequestToEntity(req, s.newID("p"), s.now())
	if _, err := s.apply(true, func(cur *entity.AppState) (Action, error) {
		return AddPatientAction{Patient: patient}, nil
	}); err != nil {
		return entity.Patient{}, err
	}
	return patient, nil
}

func (s *clinicStore) UpdatePatient(ctx context.Context, id string, req *dto.UpdatePatientRequest) (bool, error) {
	if err := s.validate(ctx, req); err != nil {
		return false, err
	}

	patch := converter.UpdatePatientRequestToPatch(req)
	matched := false
	_, err := s.apply(true, func(cur *entity.AppState) (Action, error) {
		if !cur.HasPatient(id) {
			return nil, nil
		}
		matched = true
		return UpdatePatientAction{ID: id, Patch: patch}, nil
	})
	return matched, err
}

func (s *clinicStore) DeletePatient(ctx context.Context, id string) bool {
	matched := false
	_, _ = s.apply(true, func(cur *entity.AppState) (Action, error) {
		if !cur.HasPatient(id) {
			return nil, nil
		}
		matched = true
		return DeletePatientAction{ID: id}, nil
	})
	return matched
}

// =============================================================================
// Incidents
// =============================================================================

func (s *clinicStore) AddIncident(ctx context.Context, req *dto.IncidentRequest) (entity.Incident, error) {
	if err := s.validate(ctx, req); err != nil {
		return entity.Incident{}, err
	}

	incident := converter.IncidentRequestToEntity(req, s.newID("i"), s.now())
	if _, err := s.apply(true, func(cur *entity.AppState) (Action, error) {
		if !cur.HasPatient(incident.PatientID) {
			return nil, fmt.Errorf("%w: %s", ErrPatientNotFound, incident.PatientID)
		}
		return AddIncidentAction{Incident: incident}, nil
	}); err != nil {
		return entity.Incident{}, err
	}
	return incident.Clone(), nil
}

func (s *clinicStore) UpdateIncident(ctx context.Context, id string, req *dto.UpdateIncidentRequest) (bool, error) {
	if err := s.validate(ctx, req); err != nil {
		return false, err
	}

	patch := converter.UpdateIncidentRequestToPatch(req)
	matched := false
	_, err := s.apply(true, func(cur *entity.AppState) (Action, error) {
		if cur.FindIncident(id) == nil {
			return nil, nil
		}
		if patch.PatientID != nil && !cur.HasPatient(*patch.PatientID) {
			return nil, fmt.Errorf("%w: %s", ErrPatientNotFound, *patch.PatientID)
		}
		matched = true
		return UpdateIncidentAction{ID: id, Patch: patch, At: s.now()}, nil
	})
	return matched, err
}

func (s *clinicStore) DeleteIncident(ctx context.Context, id string) bool {
	matched := false
	_, _ = s.apply(true, func(cur *entity.AppState) (Action, error) {
		if cur.FindIncident(id) == nil {
			return nil, nil
		}
		matched = true
		return DeleteIncidentAction{ID: id}, nil
	})
	return matched
}

// =============================================================================
// Files
// =============================================================================

func (s *clinicStore) UploadFile(ctx context.Context, incidentID string, blob service.FileBlob) (entity.FileAttachment, error) {
	if _, ok := s.Incident(incidentID); !ok {
		return entity.FileAttachment{}, fmt.Errorf("%w: %s", ErrIncidentNotFound, incidentID)
	}

	// Reading happens without the state lock; other transitions keep flowing meanwhile
	attachment, err := s.ingestor.Ingest(ctx, blob)
	if err != nil {
		return entity.FileAttachment{}, err
	}

	if _, err := s.apply(true, func(cur *entity.AppState) (Action, error) {
		// merge into the incident as it is now, not as it was when the upload started
		incident := cur.FindIncident(incidentID)
		if incident == nil {
			return nil, fmt.Errorf("%w: %s", ErrIncidentNotFound, incidentID)
		}
		files := append(entity.CloneFiles(incident.Files), attachment)
		return UpdateIncidentAction{
			ID:    incidentID,
			Patch: entity.IncidentPatch{Files: &files},
			At:    s.now(),
		}, nil
	}); err != nil {
		s.log.Warnf("Failed to attach file %s: %+v", attachment.Name, err)
		return entity.FileAttachment{}, err
	}
	return attachment, nil
}

// UploadFiles ingests blobs concurrently. Each successful upload is attached on its own;
// failures are joined into the returned error.
func (s *clinicStore) UploadFiles(ctx context.Context, incidentID string, blobs ...service.FileBlob) ([]entity.FileAttachment, error) {
	p := pool.NewWithResults[entity.FileAttachment]().WithContext(ctx)
	for _, blob := range blobs {
		p.Go(func(ctx context.Context) (entity.FileAttachment, error) {
			return s.UploadFile(ctx, incidentID, blob)
		})
	}
	return p.Wait()
}

func (s *clinicStore) RemoveFile(ctx context.Context, incidentID, fileID string) bool {
	matched := false
	_, _ = s.apply(true, func(cur *entity.AppState) (Action, error) {
		incident := cur.FindIncident(incidentID)
		if incident == nil {
			return nil, nil
		}
		idx := incident.FindFile(fileID)
		if idx < 0 {
			return nil, nil
		}
		files := make([]entity.FileAttachment, 0, len(incident.Files)-1)
		files = append(files, incident.Files[:idx]...)
		files = append(files, incident.Files[idx+1:]...)
		matched = true
		return UpdateIncidentAction{
			ID:    incidentID,
			Patch: entity.IncidentPatch{Files: &files},
			At:    s.now(),
		}, nil
	})
	return matched
}

// =============================================================================
// Reads
// =============================================================================

func (s *clinicStore) current() *entity.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *clinicStore) Snapshot() *entity.AppState {
	return s.current().Clone()
}

func (s *clinicStore) Users() []entity.User {
	return s.Snapshot().Users
}

func (s *clinicStore) Patients() []entity.Patient {
	return s.Snapshot().Patients
}

func (s *clinicStore) Incidents() []entity.Incident {
	return s.Snapshot().Incidents
}

func (s *clinicStore) CurrentUser() *entity.User {
	user := s.current().CurrentUser
	if user == nil {
		return nil
	}
	clone := user.Clone()
	return &clone
}

func (s *clinicStore) IsAuthenticated() bool {
	return s.current().IsAuthenticated
}

func (s *clinicStore) Patient(id string) (entity.Patient, bool) {
	patient := s.current().FindPatient(id)
	if patient == nil {
		return entity.Patient{}, false
	}
	return *patient, true
}

func (s *clinicStore) Incident(id string) (entity.Incident, bool) {
	incident := s.current().FindIncident(id)
	if incident == nil {
		return entity.Incident{}, false
	}
	return incident.Clone(), true
}

func (s *clinicStore) IncidentsForPatient(patientID string) []entity.Incident {
	state := s.current()
	incidents := make([]entity.Incident, 0)
	for i := range state.Incidents {
		if state.Incidents[i].PatientID == patientID {
			incidents = append(incidents, state.Incidents[i].Clone())
		}
	}
	return incidents
}

func (s *clinicStore) Subscribe(fn func(*entity.AppState)) func() {
	s.subsMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subscribers, id)
		s.subsMu.Unlock()
	}
}

// =============================================================================
// Private Methods
// =============================================================================

// apply runs build against the current state under the write lock and commits the reduced result.
// A nil action means nothing to do. When persist is set the committed snapshot is handed to the
// persister while the lock is held; subscribers are notified either way, in commit order.
func (s *clinicStore) apply(persist bool, build func(cur *entity.AppState) (Action, error)) (*entity.AppState, error) {
	s.mu.Lock()
	cur := s.state
	action, err := build(cur)
	if err != nil || action == nil {
		s.mu.Unlock()
		return cur, err
	}

	next := Reduce(cur, action)
	if next == cur {
		s.mu.Unlock()
		return cur, nil
	}
	s.state = next
	s.hydrated = true

	// enqueue before unlocking so a Reset flush always sees every earlier commit
	if persist && s.persister != nil {
		s.persister.Enqueue(next)
	}

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.metrics.Transitions.WithLabelValues(string(action.Kind())).Inc()
	s.log.WithFields(logrus.Fields{
		"action":    action.Kind(),
		"patients":  len(next.Patients),
		"incidents": len(next.Incidents),
	}).Debug("State transition committed")

	s.subsMu.RLock()
	subscribers := make([]func(*entity.AppState), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.subsMu.RUnlock()
	for _, fn := range subscribers {
		fn(next.Clone())
	}

	return next, nil
}

func (s *clinicStore) validate(ctx context.Context, req interface{}) error {
	return ValidateRequest(ctx, s.validator, req)
}

// ValidateRequest checks req against its validate tags and wraps any failure in ErrValidation
func ValidateRequest(ctx context.Context, v *validator.CustomValidator, req interface{}) error {
	err := v.ValidateCtx(ctx, req)
	if err == nil {
		return nil
	}

	fields := v.FormatValidationErrors(err)
	if len(fields) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	messages := make([]string, 0, len(fields))
	for _, msg := range fields {
		messages = append(messages, msg)
	}
	sort.Strings(messages)
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(messages, "; "))
}
