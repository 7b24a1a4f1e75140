package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validIncident() IncidentReport {
	return IncidentReport{
		Date:       time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC),
		Hour:       15,
		Minute:     30,
		PersonName: "Jordan Reyes",
		Age:        34,
		PostalCode: "90401",
		Incidences: []Incidence{IncidenceRescue},
		BeachName:  "Santa Monica Beach - Post A",
	}
}

func validEnvironment() EnvironmentReport {
	return EnvironmentReport{
		Date:       time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC),
		Hour:       9,
		Minute:     0,
		WindSpeed:  12.5,
		WaveHeight: 0.8,
		BeachName:  "Santa Monica Beach - Post A",
	}
}

func TestIncidentReport_ValidFormPasses(t *testing.T) {
	assert.Empty(t, validIncident().Validate())
}

func TestIncidentReport_PresenceErrorsCollected(t *testing.T) {
	r := validIncident()
	r.PersonName = ""
	r.PostalCode = ""
	r.BeachName = ""

	errs := r.Validate()
	require.Len(t, errs, 3)
	assert.Equal(t, "beach_name", errs[0].Field)
	assert.Equal(t, "person_name", errs[1].Field)
	assert.Equal(t, "postal_code", errs[2].Field)
}

func TestIncidentReport_PresenceShortCircuitsRangeChecks(t *testing.T) {
	r := validIncident()
	r.PersonName = ""
	r.Hour = 24 // would also fail, but presence is reported first

	errs := r.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "person_name", errs[0].Field)
}

func TestIncidentReport_RangeErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*IncidentReport)
		field  string
	}{
		{"hour too large", func(r *IncidentReport) { r.Hour = 24 }, "hour"},
		{"hour negative", func(r *IncidentReport) { r.Hour = -1 }, "hour"},
		{"minute too large", func(r *IncidentReport) { r.Minute = 60 }, "minute"},
		{"age negative", func(r *IncidentReport) { r.Age = -1 }, "age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validIncident()
			tt.mutate(&r)

			errs := r.Validate()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestIncidentReport_EmptyIncidences(t *testing.T) {
	r := validIncident()
	r.Incidences = nil

	errs := r.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "incidences", errs[0].Field)
}

func TestIncidentReport_UnknownIncidence(t *testing.T) {
	r := validIncident()
	r.Incidences = []Incidence{IncidenceRescue, Incidence("shark_sighting")}

	errs := r.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "incidences", errs[0].Field)
	assert.Contains(t, errs[0].Reason, "shark_sighting")
}

func TestEnvironmentReport_ValidFormPasses(t *testing.T) {
	assert.Empty(t, validEnvironment().Validate())
}

func TestEnvironmentReport_NegativeTemperatureAllowed(t *testing.T) {
	r := validEnvironment()
	r.Temperature = -3.5
	assert.Empty(t, r.Validate())
}

func TestEnvironmentReport_NegativeMagnitudes(t *testing.T) {
	r := validEnvironment()
	r.WindSpeed = -1
	r.WaveHeight = -0.1

	errs := r.Validate()
	require.Len(t, errs, 2)
	assert.Equal(t, "wind_speed", errs[0].Field)
	assert.Equal(t, "wave_height", errs[1].Field)
}

func TestEnvironmentReport_MissingDate(t *testing.T) {
	r := validEnvironment()
	r.Date = time.Time{}

	errs := r.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "date", errs[0].Field)
}

func TestIncidenceVocabulary(t *testing.T) {
	assert.True(t, IncidenceRescue.Valid())
	assert.True(t, IncidenceOther.Valid())
	assert.False(t, Incidence("").Valid())
	assert.False(t, Incidence("sunburn").Valid())
	assert.Len(t, Incidences(), 8)
}

func TestSelection_ResolvedName(t *testing.T) {
	beach := &Beach{ID: "1", Name: "Santa Monica Beach"}
	post := &BeachPost{ID: "a", BeachID: "1", Name: "Post A"}

	assert.Equal(t, "", Selection{}.ResolvedName())
	assert.Equal(t, "", Selection{Beach: beach}.ResolvedName())
	assert.Equal(t, "Santa Monica Beach - Post A", Selection{Beach: beach, Post: post}.ResolvedName())
}

func TestToday_UsesInjectedClock(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 17, 45, 12, 0, time.UTC))
	SetClock(fake)
	defer SetClock(nil)

	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), Today())
	assert.Equal(t, fake.Now(), Now())
}
