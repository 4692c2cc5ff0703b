package cli

import (
	"context"
	"fmt"
	"time"

	"dental-center/internal/domain/entity"
	"dental-center/internal/usecase"

	"github.com/spf13/afero"
)

// Options are the global flags shared by every command
type Options struct {
	ConfigPath string
	Format     string
	Verbose    bool
}

// Session is the hydrated store a single command invocation works on
type Session struct {
	Store     usecase.ClinicStore
	Dashboard usecase.DashboardUsecase
	FS        afero.Fs
	Location  *time.Location
	// Close flushes pending writes and releases connections
	Close func(ctx context.Context) error
}

// SessionFactory opens a Session for the given global options
type SessionFactory func(ctx context.Context, opts Options) (*Session, error)

// requireAuth returns the logged in user
func requireAuth(store usecase.ClinicStore) (*entity.User, error) {
	user := store.CurrentUser()
	if user == nil || !store.IsAuthenticated() {
		return nil, fmt.Errorf("%w: run `dental login EMAIL PASSWORD` first", usecase.ErrNotAuthenticated)
	}
	return user, nil
}

// requireAdmin only lets admin sessions through
func requireAdmin(store usecase.ClinicStore) (*entity.User, error) {
	user, err := requireAuth(store)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", usecase.ErrForbidden)
	}
	return user, nil
}

// canSeePatient reports whether user may read records of patientID
func canSeePatient(user *entity.User, patientID string) bool {
	if user.IsAdmin() {
		return true
	}
	return user.PatientID != nil && *user.PatientID == patientID
}
