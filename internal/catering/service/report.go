package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ms-catering/internal/models"
	"ms-catering/internal/schedule"
)

// ReportRow is one participant on one meal of the day report.
type ReportRow struct {
	ParticipantID string          `json:"participant_id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Source        EntitlementKind `json:"source"`
	Diet          string          `json:"diet,omitempty"`
}

// MealReport lists everyone to feed at one slot.
type MealReport struct {
	MealID       string            `json:"meal_id"`
	MealType     schedule.MealType `json:"meal_type"`
	Volunteers   int               `json:"volunteers"`
	Artists      int               `json:"artists"`
	Participants int               `json:"participants"`
	Total        int               `json:"total"`
	Rows         []ReportRow       `json:"rows"`
}

// AllergyEntry is one kitchen-safety line of the day summary.
type AllergyEntry struct {
	ParticipantID    string          `json:"participant_id"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	Source           EntitlementKind `json:"source"`
	Allergies        string          `json:"allergies"`
	Severity         string          `json:"severity,omitempty"`
	EmergencyContact string          `json:"emergency_contact,omitempty"`
}

// ReportSummary rolls the day up for kitchen planning: distinct people,
// dietary histogram, flat allergy list.
type ReportSummary struct {
	People    int            `json:"people"`
	Diets     map[string]int `json:"diets"`
	Allergies []AllergyEntry `json:"allergies"`
}

// DayReport is the kitchen planning view of one calendar day.
type DayReport struct {
	EventID string        `json:"event_id"`
	Date    time.Time     `json:"date"`
	Summary ReportSummary `json:"summary"`
	Meals   []MealReport  `json:"meals"`
}

// DayReport joins accepted volunteers and artists with tier-linked ticket
// holders for every enabled slot on the given day. Ticket holders are
// reached through the tier path only and are NOT deduplicated against
// option grants: this is a planning report, where a person reachable two
// ways is tolerable, unlike the access-control aggregate in MealStats.
func (s *CateringService) DayReport(ctx context.Context, eventID string, date time.Time) (*DayReport, error) {
	if _, err := s.ReconcileSlots(ctx, eventID); err != nil {
		return nil, err
	}

	slots, err := s.DB.EnabledSlotsByEventAndDate(ctx, eventID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots for event %s: %w", eventID, err)
	}
	sortSlots(slots)

	report := &DayReport{
		EventID: eventID,
		Date:    schedule.DateOnly(date),
		Summary: ReportSummary{Diets: map[string]int{}},
	}
	seen := make(map[string]bool)

	for _, slot := range slots {
		meal := MealReport{MealID: slot.ID, MealType: slot.MealType}

		volunteers, err := s.reportVolunteers(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		artists, err := s.reportArtists(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		items, err := s.DB.TierTicketItemsByMeal(ctx, slot.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load ticket holders for meal %s: %w", slot.ID, err)
		}

		for _, v := range volunteers {
			meal.Rows = append(meal.Rows, ReportRow{
				ParticipantID: v.ID, FirstName: v.FirstName, LastName: v.LastName,
				Source: KindVolunteer, Diet: v.Diet,
			})
			s.addToSummary(report, seen, KindVolunteer, v.ID, v.FirstName, v.LastName, v.Diet, v.Allergies, v.AllergySeverity, v.EmergencyContact)
		}
		meal.Volunteers = len(volunteers)

		for _, a := range artists {
			meal.Rows = append(meal.Rows, ReportRow{
				ParticipantID: a.ID, FirstName: a.FirstName, LastName: a.LastName,
				Source: KindArtist, Diet: a.Diet,
			})
			s.addToSummary(report, seen, KindArtist, a.ID, a.FirstName, a.LastName, a.Diet, a.Allergies, a.AllergySeverity, a.EmergencyContact)
		}
		meal.Artists = len(artists)

		for _, item := range items {
			meal.Rows = append(meal.Rows, ReportRow{
				ParticipantID: item.ID, FirstName: item.HolderFirstName, LastName: item.HolderLastName,
				Source: KindParticipant, Diet: item.Diet,
			})
			s.addToSummary(report, seen, KindParticipant, item.ID, item.HolderFirstName, item.HolderLastName, item.Diet, item.Allergies, item.AllergySeverity, "")
		}
		meal.Participants = len(items)

		meal.Total = len(meal.Rows)
		sort.Slice(meal.Rows, func(i, j int) bool {
			if meal.Rows[i].LastName != meal.Rows[j].LastName {
				return meal.Rows[i].LastName < meal.Rows[j].LastName
			}
			return meal.Rows[i].FirstName < meal.Rows[j].FirstName
		})
		report.Meals = append(report.Meals, meal)
	}

	sort.Slice(report.Summary.Allergies, func(i, j int) bool {
		if report.Summary.Allergies[i].LastName != report.Summary.Allergies[j].LastName {
			return report.Summary.Allergies[i].LastName < report.Summary.Allergies[j].LastName
		}
		return report.Summary.Allergies[i].FirstName < report.Summary.Allergies[j].FirstName
	})
	return report, nil
}

// addToSummary counts each person once per day regardless of how many meals
// they attend.
func (s *CateringService) addToSummary(report *DayReport, seen map[string]bool, source EntitlementKind, id, first, last, diet, allergies, severity, emergencyContact string) {
	key := string(source) + "/" + id
	if seen[key] {
		return
	}
	seen[key] = true

	report.Summary.People++
	if diet != "" {
		report.Summary.Diets[diet]++
	}
	if allergies != "" {
		report.Summary.Allergies = append(report.Summary.Allergies, AllergyEntry{
			ParticipantID: id, FirstName: first, LastName: last, Source: source,
			Allergies: allergies, Severity: severity, EmergencyContact: emergencyContact,
		})
	}
}

func (s *CateringService) reportVolunteers(ctx context.Context, mealID string) ([]models.VolunteerProfile, error) {
	selections, err := s.DB.AcceptedVolunteerSelectionsByMeal(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to load volunteer selections for meal %s: %w", mealID, err)
	}
	ids := make([]string, len(selections))
	for i, sel := range selections {
		ids[i] = sel.VolunteerID
	}
	volunteers, err := s.DB.VolunteersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load volunteers for meal %s: %w", mealID, err)
	}
	accepted := volunteers[:0]
	for _, v := range volunteers {
		if v.Status == models.ParticipantAccepted {
			accepted = append(accepted, v)
		}
	}
	return accepted, nil
}

func (s *CateringService) reportArtists(ctx context.Context, mealID string) ([]models.ArtistProfile, error) {
	selections, err := s.DB.AcceptedArtistSelectionsByMeal(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to load artist selections for meal %s: %w", mealID, err)
	}
	ids := make([]string, len(selections))
	for i, sel := range selections {
		ids[i] = sel.ArtistID
	}
	artists, err := s.DB.ArtistsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load artists for meal %s: %w", mealID, err)
	}
	accepted := artists[:0]
	for _, a := range artists {
		if a.Status == models.ParticipantAccepted {
			accepted = append(accepted, a)
		}
	}
	return accepted, nil
}
