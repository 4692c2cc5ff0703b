package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedStateDocument(t *testing.T) {
	data, err := json.MarshalIndent(SeedState(), "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "seed_state", data)
}

func TestSeedStateReferences(t *testing.T) {
	state := SeedState()

	for _, u := range state.Users {
		if u.IsPatient() {
			require.NotNil(t, u.PatientID, u.Email)
			assert.True(t, state.HasPatient(*u.PatientID), u.Email)
		} else {
			assert.Nil(t, u.PatientID, u.Email)
		}
	}
	for _, inc := range state.Incidents {
		assert.True(t, state.HasPatient(inc.PatientID), inc.ID)
		assert.False(t, inc.UpdatedAt.Before(inc.CreatedAt), inc.ID)
	}
}

func TestSeedStateDecodesNumericCost(t *testing.T) {
	// documents written by the web client carry cost as a plain number
	var inc Incident
	require.NoError(t, json.Unmarshal([]byte(`{"id":"i9","patientId":"p1","cost":120.5,"status":"Completed","files":[]}`), &inc))
	require.NotNil(t, inc.Cost)
	assert.True(t, decimal.RequireFromString("120.5").Equal(*inc.Cost))
}

func TestAppStateCloneIsDeep(t *testing.T) {
	state := SeedState()
	state.CurrentUser = &state.Users[1]
	state.IsAuthenticated = true
	state.Incidents[1].Files = []FileAttachment{{ID: "f1", Name: "xray.png"}}

	clone := state.Clone()
	require.Equal(t, state, clone)

	clone.Patients[0].Name = "Changed"
	clone.Incidents[0].Cost = nil
	*clone.Incidents[0].Treatment = "Changed"
	clone.Incidents[1].Files[0].Name = "changed.png"
	*clone.CurrentUser.PatientID = "p9"

	assert.Equal(t, "John Doe", state.Patients[0].Name)
	assert.NotNil(t, state.Incidents[0].Cost)
	assert.Equal(t, "Professional cleaning and fluoride treatment", *state.Incidents[0].Treatment)
	assert.Equal(t, "xray.png", state.Incidents[1].Files[0].Name)
	assert.Equal(t, "p1", *state.CurrentUser.PatientID)
}

func TestAppStateNormalized(t *testing.T) {
	t.Run("nil state", func(t *testing.T) {
		out := (*AppState)(nil).Normalized()
		assert.NotNil(t, out.Users)
		assert.NotNil(t, out.Patients)
		assert.NotNil(t, out.Incidents)
		assert.False(t, out.IsAuthenticated)
	})

	t.Run("drops dangling incidents", func(t *testing.T) {
		state := SeedState()
		state.Patients = state.Patients[1:] // p1 gone

		out := state.Normalized()
		require.Len(t, out.Incidents, 1)
		assert.Equal(t, "i2", out.Incidents[0].ID)
		assert.Len(t, state.Incidents, 3, "input must stay untouched")
	})

	t.Run("session flag follows current user", func(t *testing.T) {
		state := SeedState()
		state.IsAuthenticated = true

		assert.False(t, state.Normalized().IsAuthenticated)
	})

	t.Run("nil files become empty", func(t *testing.T) {
		state := SeedState()
		state.Incidents[0].Files = nil

		out := state.Normalized()
		assert.NotNil(t, out.Incidents[0].Files)
		assert.Empty(t, out.Incidents[0].Files)
	})
}

func TestIncidentPredicates(t *testing.T) {
	inc := Incident{Status: IncidentStatusPending}
	assert.True(t, inc.IsOpen())
	assert.False(t, inc.IsCompleted())
	assert.True(t, inc.CostOrZero().IsZero())

	inc.Files = []FileAttachment{{ID: "a"}, {ID: "b"}}
	assert.True(t, inc.HasFiles())
	assert.Equal(t, 1, inc.FindFile("b"))
	assert.Equal(t, -1, inc.FindFile("c"))

	assert.True(t, IncidentStatusCancelled.IsValid())
	assert.False(t, IncidentStatus("Done").IsValid())
	assert.True(t, RoleAdmin.IsValid())
}

func TestSeedTimesAreUTC(t *testing.T) {
	state := SeedState()
	assert.Equal(t, time.UTC, state.Patients[0].CreatedAt.Location())
}
