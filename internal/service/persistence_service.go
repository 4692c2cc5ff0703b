package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"dental-center/internal/domain/entity"
	"dental-center/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// Timeout for a single snapshot write to the durable slot
	persistSaveTimeout = 5 * time.Second
)

// =============================================================================
// Types
// =============================================================================

// PersistenceService writes committed snapshots to the state repository off the mutation path.
//
// Ordering:
// - A single goroutine performs every write, so writes land in commit order
// - Snapshots enqueued while a write is in flight coalesce to the newest one
// - The durable slot therefore always ends with the last committed state
type PersistenceService struct {
	repo repository.StateRepository
	log  *logrus.Logger

	mu       sync.Mutex
	pending  *entity.AppState
	enqueued uint64 // sequence of the newest enqueued snapshot
	written  uint64 // sequence of the newest written snapshot
	waiters  []flushWaiter

	wake chan struct{}

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

type flushWaiter struct {
	seq  uint64
	done chan struct{}
}

// =============================================================================
// Constructor
// =============================================================================

// NewPersistenceService creates a PersistenceService and starts its writer goroutine.
// Call Stop() during shutdown to drain pending writes.
func NewPersistenceService(repo repository.StateRepository, log *logrus.Logger) *PersistenceService {
	svc := &PersistenceService{
		repo:     repo,
		log:      log,
		wake:     make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.writeLoop()

	return svc
}

// =============================================================================
// Lifecycle Methods
// =============================================================================

// Stop writes whatever is still pending and stops the writer.
// Safe to call multiple times.
func (s *PersistenceService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		// catch an Enqueue that raced with the stop flag
		s.drain()
		s.log.Info("PersistenceService stopped")
	}
}

// =============================================================================
// Public Methods
// =============================================================================

// Enqueue schedules state to be written. It never blocks.
// The snapshot must not be modified afterwards.
func (s *PersistenceService) Enqueue(state *entity.AppState) {
	if state == nil {
		return
	}
	if s.stopped.Load() {
		s.log.Warn("PersistenceService is stopped, snapshot dropped")
		return
	}

	s.mu.Lock()
	s.pending = state
	s.enqueued++
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
		// writer already signalled
	}
}

// Flush blocks until every snapshot enqueued before the call has been written, or ctx is done.
func (s *PersistenceService) Flush(ctx context.Context) error {
	s.mu.Lock()
	target := s.enqueued
	if s.written >= target {
		s.mu.Unlock()
		return nil
	}
	done := make(chan struct{})
	s.waiters = append(s.waiters, flushWaiter{seq: target, done: done})
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// Private Methods
// =============================================================================

func (s *PersistenceService) writeLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.stopChan:
			s.drain()
			return
		}
	}
}

// drain writes the pending snapshot until nothing is left
func (s *PersistenceService) drain() {
	for {
		s.mu.Lock()
		state, seq := s.pending, s.enqueued
		s.pending = nil
		s.mu.Unlock()

		if state == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), persistSaveTimeout)
		s.repo.Save(ctx, state)
		cancel()

		s.mu.Lock()
		s.written = seq
		kept := s.waiters[:0]
		for _, w := range s.waiters {
			if w.seq <= seq {
				close(w.done)
				continue
			}
			kept = append(kept, w)
		}
		s.waiters = kept
		s.mu.Unlock()
	}
}
