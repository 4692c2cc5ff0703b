package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dental-center/internal/domain/entity"
	domainRepo "dental-center/internal/domain/repository"
	"dental-center/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// DefaultStateKey is the slot name used when none is configured
const DefaultStateKey = "dental-center-data"

var requiredCollections = []string{"users", "patients", "incidents"}

type stateRepository struct {
	slot    domainRepo.SlotRepository
	key     string
	log     *logrus.Logger
	metrics *metrics.StoreMetrics
}

func NewStateRepository(slot domainRepo.SlotRepository, key string, log *logrus.Logger, m *metrics.StoreMetrics) domainRepo.StateRepository {
	if key == "" {
		key = DefaultStateKey
	}
	return &stateRepository{
		slot:    slot,
		key:     key,
		log:     log,
		metrics: m,
	}
}

// Save overwrites the slot with the JSON encoding of state.
// Failures are logged and dropped; the previous durable copy stays in place.
func (r *stateRepository) Save(ctx context.Context, state *entity.AppState) {
	if state == nil {
		return
	}
	doc := *state
	doc.Version = entity.StateVersion

	payload, err := json.Marshal(&doc)
	if err != nil {
		r.metrics.PersistErrors.WithLabelValues("encode").Inc()
		r.log.Errorf("Failed to encode state for slot %q: %+v", r.key, err)
		return
	}

	if err := r.slot.Write(ctx, r.key, payload); err != nil {
		r.metrics.PersistErrors.WithLabelValues("write").Inc()
		r.log.Errorf("Failed to save state to slot %q: %+v", r.key, err)
		return
	}

	r.metrics.PersistWrites.Inc()
	r.log.Debugf("Saved state to slot %q (%d bytes)", r.key, len(payload))
}

// Load reads the slot. An absent, unreadable or malformed document is reported
// as "no data" so the caller can fall back to the seed.
func (r *stateRepository) Load(ctx context.Context) (*entity.AppState, bool) {
	payload, err := r.slot.Read(ctx, r.key)
	if err != nil {
		if errors.Is(err, domainRepo.ErrSlotNotFound) {
			r.log.Debugf("No persisted state in slot %q", r.key)
			return nil, false
		}
		r.metrics.PersistErrors.WithLabelValues("read").Inc()
		r.log.Warnf("Failed to read state from slot %q: %+v", r.key, err)
		return nil, false
	}

	state, err := decodeState(payload)
	if err != nil {
		r.metrics.PersistErrors.WithLabelValues("decode").Inc()
		r.log.Warnf("Discarding unreadable state in slot %q: %+v", r.key, err)
		return nil, false
	}

	normalized := state.Normalized()
	if dropped := len(state.Incidents) - len(normalized.Incidents); dropped > 0 {
		r.log.WithField("dropped", dropped).Warnf("Discarded incidents of unknown patients in slot %q", r.key)
	}
	return normalized, true
}

// Clear removes the slot. Failures are logged only.
func (r *stateRepository) Clear(ctx context.Context) {
	if err := r.slot.Delete(ctx, r.key); err != nil {
		r.metrics.PersistErrors.WithLabelValues("delete").Inc()
		r.log.Warnf("Failed to clear slot %q: %+v", r.key, err)
		return
	}
	r.log.Debugf("Cleared slot %q", r.key)
}

func decodeState(payload []byte) (*entity.AppState, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, errors.New("empty document")
	}

	var shape map[string]json.RawMessage
	if err := json.Unmarshal(payload, &shape); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if shape == nil {
		return nil, errors.New("document is null")
	}
	for _, name := range requiredCollections {
		raw, ok := shape[name]
		if !ok {
			return nil, fmt.Errorf("missing %q collection", name)
		}
		if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
			return nil, fmt.Errorf("%q is not a list", name)
		}
	}

	var state entity.AppState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if state.Version > entity.StateVersion {
		return nil, fmt.Errorf("unsupported state version %d", state.Version)
	}
	return &state, nil
}
