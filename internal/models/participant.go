package models

import (
	"time"

	"github.com/uptrace/bun"

	"ms-catering/internal/schedule"
)

// Participant statuses shared by volunteers and artists. Only ACCEPTED
// participants appear in aggregates and reports.
const (
	ParticipantAccepted = "ACCEPTED"
	ParticipantPending  = "PENDING"
	ParticipantRejected = "REJECTED"
)

// VolunteerProfile carries the phase-availability flags and the optional
// arrival/departure window that drive meal eligibility, plus the dietary
// metadata the kitchen report needs.
type VolunteerProfile struct {
	bun.BaseModel `bun:"table:volunteer_profiles,alias:volunteer_profile"`

	ID                 string             `bun:"id,pk" json:"id"`
	EventID            string             `bun:"event_id,notnull" json:"event_id"`
	FirstName          string             `bun:"first_name" json:"first_name"`
	LastName           string             `bun:"last_name" json:"last_name"`
	Status             string             `bun:"status,notnull" json:"status"`
	SetupAvailable     bool               `bun:"setup_available,notnull" json:"setup_available"`
	EventAvailable     bool               `bun:"event_available,notnull" json:"event_available"`
	TeardownAvailable  bool               `bun:"teardown_available,notnull" json:"teardown_available"`
	ArrivalDate        *time.Time         `bun:"arrival_date" json:"arrival_date,omitempty"`
	ArrivalTimeOfDay   schedule.TimeOfDay `bun:"arrival_time_of_day" json:"arrival_time_of_day,omitempty"`
	DepartureDate      *time.Time         `bun:"departure_date" json:"departure_date,omitempty"`
	DepartureTimeOfDay schedule.TimeOfDay `bun:"departure_time_of_day" json:"departure_time_of_day,omitempty"`
	Diet               string             `bun:"diet" json:"diet"`
	Allergies          string             `bun:"allergies" json:"allergies"`
	AllergySeverity    string             `bun:"allergy_severity" json:"allergy_severity"`
	EmergencyContact   string             `bun:"emergency_contact" json:"emergency_contact"`
}

// Availability derives the evaluator input from the profile's phase flags and
// window.
func (v *VolunteerProfile) Availability() schedule.Availability {
	var phases []schedule.Phase
	if v.SetupAvailable {
		phases = append(phases, schedule.PhaseSetup)
	}
	if v.EventAvailable {
		phases = append(phases, schedule.PhaseEvent)
	}
	if v.TeardownAvailable {
		phases = append(phases, schedule.PhaseTeardown)
	}
	return schedule.Availability{
		Phases:    phases,
		Arrival:   moment(v.ArrivalDate, v.ArrivalTimeOfDay),
		Departure: moment(v.DepartureDate, v.DepartureTimeOfDay),
	}
}

// ArtistProfile mirrors the volunteer shape without phase flags: artists are
// present for whatever phases their arrival/departure window implies and are
// available for everything when no window is given.
type ArtistProfile struct {
	bun.BaseModel `bun:"table:artist_profiles,alias:artist_profile"`

	ID                 string             `bun:"id,pk" json:"id"`
	EventID            string             `bun:"event_id,notnull" json:"event_id"`
	FirstName          string             `bun:"first_name" json:"first_name"`
	LastName           string             `bun:"last_name" json:"last_name"`
	Status             string             `bun:"status,notnull" json:"status"`
	ArrivalDate        *time.Time         `bun:"arrival_date" json:"arrival_date,omitempty"`
	ArrivalTimeOfDay   schedule.TimeOfDay `bun:"arrival_time_of_day" json:"arrival_time_of_day,omitempty"`
	DepartureDate      *time.Time         `bun:"departure_date" json:"departure_date,omitempty"`
	DepartureTimeOfDay schedule.TimeOfDay `bun:"departure_time_of_day" json:"departure_time_of_day,omitempty"`
	Diet               string             `bun:"diet" json:"diet"`
	Allergies          string             `bun:"allergies" json:"allergies"`
	AllergySeverity    string             `bun:"allergy_severity" json:"allergy_severity"`
	EmergencyContact   string             `bun:"emergency_contact" json:"emergency_contact"`
}

func (a *ArtistProfile) Availability() schedule.Availability {
	return schedule.Availability{
		Phases:    schedule.AllPhases,
		Arrival:   moment(a.ArrivalDate, a.ArrivalTimeOfDay),
		Departure: moment(a.DepartureDate, a.DepartureTimeOfDay),
	}
}

func moment(date *time.Time, tod schedule.TimeOfDay) *schedule.Moment {
	if date == nil {
		return nil
	}
	return &schedule.Moment{Date: *date, TimeOfDay: tod}
}
