package http

import (
	"fmt"
	"time"

	"github.com/viperioribus/shorewatch/internal/domain"
)

// Kiosk request bodies. Dates are YYYY-MM-DD; an empty date means today.

type incidentRequest struct {
	Date         string   `json:"date"`
	Hour         int      `json:"hour"`
	Minute       int      `json:"minute"`
	PersonName   string   `json:"person_name"`
	Age          int      `json:"age"`
	PostalCode   string   `json:"postal_code"`
	Incidences   []string `json:"incidences"`
	Observations string   `json:"observations"`
}

func (r incidentRequest) toReport(beachName string) (domain.IncidentReport, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return domain.IncidentReport{}, err
	}

	incidences := make([]domain.Incidence, len(r.Incidences))
	for i, inc := range r.Incidences {
		incidences[i] = domain.Incidence(inc)
	}

	return domain.IncidentReport{
		Date:         date,
		Hour:         r.Hour,
		Minute:       r.Minute,
		PersonName:   r.PersonName,
		Age:          r.Age,
		PostalCode:   r.PostalCode,
		Incidences:   incidences,
		Observations: r.Observations,
		BeachName:    beachName,
	}, nil
}

type environmentRequest struct {
	Date        string  `json:"date"`
	Hour        int     `json:"hour"`
	Minute      int     `json:"minute"`
	WindSpeed   float64 `json:"wind_speed"`
	Temperature float64 `json:"temperature"`
	WaveHeight  float64 `json:"wave_height"`
}

func (r environmentRequest) toReport(beachName string) (domain.EnvironmentReport, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return domain.EnvironmentReport{}, err
	}

	return domain.EnvironmentReport{
		Date:        date,
		Hour:        r.Hour,
		Minute:      r.Minute,
		WindSpeed:   r.WindSpeed,
		Temperature: r.Temperature,
		WaveHeight:  r.WaveHeight,
		BeachName:   beachName,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return domain.Today(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
