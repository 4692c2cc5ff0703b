package usecase

import (
	"context"
	"testing"
	"time"

	"dental-center/internal/delivery/dto"
	"dental-center/internal/domain/entity"
	"dental-center/pkg/validator"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dashboardNow is the morning of the seeded tooth filling appointment
var dashboardNow = time.Date(2024, 12, 28, 9, 0, 0, 0, time.UTC)

func newTestDashboard(t *testing.T, loc *time.Location) (DashboardUsecase, ClinicStore) {
	t.Helper()
	log, _ := test.NewNullLogger()
	store := NewClinicStore(log, nopStateRepo{}, nil, nil, validator.NewValidator())
	return NewDashboardUsecase(store, loc, func() time.Time { return dashboardNow }), store
}

func TestDashboardUpcomingAppointments(t *testing.T) {
	dashboard, _ := newTestDashboard(t, time.UTC)

	upcoming := dashboard.UpcomingAppointments(10)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "i2", upcoming[0].ID)
	assert.Equal(t, "Jane Smith", upcoming[0].PatientName)
	assert.Equal(t, "i3", upcoming[1].ID)

	assert.Len(t, dashboard.UpcomingAppointments(1), 1)
}

func TestDashboardTodayAppointments(t *testing.T) {
	dashboard, _ := newTestDashboard(t, time.UTC)

	today := dashboard.TodayAppointments()
	require.Len(t, today, 1)
	assert.Equal(t, "i2", today[0].ID)
}

func TestDashboardAppointmentsOnUsesLocation(t *testing.T) {
	farEast := time.FixedZone("UTC+14", 14*60*60)
	dashboard, _ := newTestDashboard(t, farEast)

	// 2024-12-28T14:00Z is already the 29th at UTC+14
	assert.Empty(t, dashboard.AppointmentsOn(time.Date(2024, 12, 28, 12, 0, 0, 0, farEast)))
	onDay := dashboard.AppointmentsOn(time.Date(2024, 12, 29, 12, 0, 0, 0, farEast))
	require.Len(t, onDay, 1)
	assert.Equal(t, "i2", onDay[0].ID)
}

func TestDashboardStats(t *testing.T) {
	dashboard, store := newTestDashboard(t, time.UTC)

	stats := dashboard.Stats()
	assert.Equal(t, 2, stats.TotalPatients)
	assert.Equal(t, 3, stats.TotalAppointments)
	assert.Equal(t, 1, stats.TodayAppointments)
	assert.Equal(t, 1, stats.CompletedTreatments)
	assert.Equal(t, 2, stats.PendingTreatments)
	assert.Equal(t, 0, stats.CancelledTreatments)
	assert.True(t, decimal.NewFromInt(120).Equal(stats.TotalRevenue))
	assert.Equal(t, 33, stats.CompletionRate)

	cancelled := entity.IncidentStatusCancelled
	cost := decimal.RequireFromString("80.50")
	_, err := store.UpdateIncident(context.Background(), "i3", updateIncidentStatus(cancelled, &cost))
	require.NoError(t, err)

	stats = dashboard.Stats()
	assert.Equal(t, 1, stats.CancelledTreatments)
	assert.Equal(t, 1, stats.PendingTreatments)
	assert.True(t, decimal.NewFromInt(120).Equal(stats.TotalRevenue), "cancelled work is not revenue")
}

func TestDashboardTopPatients(t *testing.T) {
	dashboard, _ := newTestDashboard(t, time.UTC)

	top := dashboard.TopPatients(5)
	require.Len(t, top, 2)
	assert.Equal(t, "p1", top[0].PatientID)
	assert.Equal(t, 2, top[0].AppointmentCount)
	assert.True(t, decimal.NewFromInt(120).Equal(top[0].TotalSpent))
	assert.Equal(t, "p2", top[1].PatientID)
	assert.True(t, top[1].TotalSpent.IsZero())

	assert.Len(t, dashboard.TopPatients(1), 1)
}

func TestDashboardPatientSummary(t *testing.T) {
	dashboard, _ := newTestDashboard(t, time.UTC)

	summary, err := dashboard.PatientSummary("p1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Upcoming)
	assert.Equal(t, 1, summary.Completed)
	assert.True(t, decimal.NewFromInt(120).Equal(summary.TotalSpent))
	assert.Equal(t, 0, summary.Files)

	_, err = dashboard.PatientSummary("p404")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestDashboardOverview(t *testing.T) {
	dashboard, store := newTestDashboard(t, time.UTC)
	users := store.Users()

	_, err := dashboard.Overview(nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	admin, err := dashboard.Overview(&users[0])
	require.NoError(t, err)
	require.NotNil(t, admin.Stats)
	assert.Nil(t, admin.Summary)
	assert.Len(t, admin.Top, 2)

	jane, err := dashboard.Overview(&users[2])
	require.NoError(t, err)
	assert.Nil(t, jane.Stats)
	require.NotNil(t, jane.Summary)
	assert.Equal(t, "p2", jane.Summary.PatientID)
	require.Len(t, jane.Upcoming, 1)
	assert.Equal(t, "i2", jane.Upcoming[0].ID)
}

func updateIncidentStatus(status entity.IncidentStatus, cost *decimal.Decimal) *dto.UpdateIncidentRequest {
	return &dto.UpdateIncidentRequest{Status: &status, Cost: cost}
}
