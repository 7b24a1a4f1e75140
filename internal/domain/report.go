package domain

import (
	"fmt"
	"time"
)

// ReportKind distinguishes the two form variants.
type ReportKind string

const (
	KindIncident    ReportKind = "incident"
	KindEnvironment ReportKind = "environment"
)

// Incidence is one tag from the fixed incident vocabulary.
type Incidence string

const (
	IncidenceRescue            Incidence = "rescue"
	IncidenceFirstAid          Incidence = "first_aid"
	IncidenceLostPerson        Incidence = "lost_person"
	IncidenceJellyfishSting    Incidence = "jellyfish_sting"
	IncidenceRipCurrent        Incidence = "rip_current"
	IncidenceFlagViolation     Incidence = "flag_violation"
	IncidenceMedicalEvacuation Incidence = "medical_evacuation"
	IncidenceOther             Incidence = "other"
)

// incidenceVocabulary is the full tag set, in the order forms present it.
var incidenceVocabulary = []Incidence{
	IncidenceRescue,
	IncidenceFirstAid,
	IncidenceLostPerson,
	IncidenceJellyfishSting,
	IncidenceRipCurrent,
	IncidenceFlagViolation,
	IncidenceMedicalEvacuation,
	IncidenceOther,
}

// Incidences returns the fixed vocabulary in presentation order.
func Incidences() []Incidence {
	out := make([]Incidence, len(incidenceVocabulary))
	copy(out, incidenceVocabulary)
	return out
}

// Valid reports whether i is part of the fixed vocabulary.
func (i Incidence) Valid() bool {
	for _, v := range incidenceVocabulary {
		if i == v {
			return true
		}
	}
	return false
}

// FieldError describes one violated field of a report form.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Reason
}

// Report is a submittable form of either kind.
type Report interface {
	Kind() ReportKind
	// Validate returns every violated field of the first failing check
	// group (presence, then numeric ranges, then incidence tagging), or
	// nil when the form is submittable.
	Validate() []FieldError
}

// IncidentReport is the person-related incident form (backend inform2).
type IncidentReport struct {
	Date         time.Time
	Hour         int
	Minute       int
	PersonName   string
	Age          int
	PostalCode   string
	Incidences   []Incidence
	Observations string // optional free text

	// BeachName is the resolved "{beach} - {post}" snapshot.
	BeachName string
}

func (r IncidentReport) Kind() ReportKind { return KindIncident }

func (r IncidentReport) Validate() []FieldError {
	var errs []FieldError

	errs = appendPresenceErrors(errs, r.BeachName, r.Date)
	if r.PersonName == "" {
		errs = append(errs, FieldError{Field: "person_name", Reason: "is required"})
	}
	if r.PostalCode == "" {
		errs = append(errs, FieldError{Field: "postal_code", Reason: "is required"})
	}
	if len(errs) > 0 {
		return errs
	}

	errs = appendTimeRangeErrors(errs, r.Hour, r.Minute)
	if r.Age < 0 {
		errs = append(errs, FieldError{Field: "age", Reason: "must not be negative"})
	}
	if len(errs) > 0 {
		return errs
	}

	if len(r.Incidences) == 0 {
		return []FieldError{{Field: "incidences", Reason: "at least one incidence is required"}}
	}
	for _, inc := range r.Incidences {
		if !inc.Valid() {
			errs = append(errs, FieldError{
				Field:  "incidences",
				Reason: fmt.Sprintf("unknown incidence %q", string(inc)),
			})
		}
	}
	return errs
}

// EnvironmentReport is the environmental conditions form (backend inform4).
type EnvironmentReport struct {
	Date        time.Time
	Hour        int
	Minute      int
	WindSpeed   float64
	Temperature float64 // any real value; negative is meaningful
	WaveHeight  float64

	// BeachName is the resolved "{beach} - {post}" snapshot.
	BeachName string
}

func (r EnvironmentReport) Kind() ReportKind { return KindEnvironment }

func (r EnvironmentReport) Validate() []FieldError {
	var errs []FieldError

	errs = appendPresenceErrors(errs, r.BeachName, r.Date)
	if len(errs) > 0 {
		return errs
	}

	errs = appendTimeRangeErrors(errs, r.Hour, r.Minute)
	if r.WindSpeed < 0 {
		errs = append(errs, FieldError{Field: "wind_speed", Reason: "must not be negative"})
	}
	if r.WaveHeight < 0 {
		errs = append(errs, FieldError{Field: "wave_height", Reason: "must not be negative"})
	}
	return errs
}

func appendPresenceErrors(errs []FieldError, beachName string, date time.Time) []FieldError {
	if beachName == "" {
		errs = append(errs, FieldError{Field: "beach_name", Reason: "no beach and post selected"})
	}
	if date.IsZero() {
		errs = append(errs, FieldError{Field: "date", Reason: "is required"})
	}
	return errs
}

func appendTimeRangeErrors(errs []FieldError, hour, minute int) []FieldError {
	if hour < 0 || hour > 23 {
		errs = append(errs, FieldError{Field: "hour", Reason: "must be between 0 and 23"})
	}
	if minute < 0 || minute > 59 {
		errs = append(errs, FieldError{Field: "minute", Reason: "must be between 0 and 59"})
	}
	return errs
}
