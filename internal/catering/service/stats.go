package service

import (
	"context"
	"fmt"
	"math"
)

// SourceStats is one breakdown entry of the aggregate.
type SourceStats struct {
	Total     int `json:"total"`
	Validated int `json:"validated"`
}

// MealStats is the access-control aggregate for one meal slot. Ticket
// holders reachable through both their tier and a purchased option are
// counted once.
type MealStats struct {
	MealID     string `json:"meal_id"`
	Total      int    `json:"total"`
	Validated  int    `json:"validated"`
	Percentage int    `json:"percentage"`
	Breakdown  struct {
		Volunteers   SourceStats `json:"volunteers"`
		Artists      SourceStats `json:"artists"`
		Participants SourceStats `json:"participants"`
	} `json:"breakdown"`
}

// MealStats aggregates entitlements and consumptions across the three
// participant sources for one meal. Served from the cache within its TTL.
func (s *CateringService) MealStats(ctx context.Context, mealID string) (*MealStats, error) {
	if s.Cache != nil {
		if cached, ok := s.Cache.GetMealStats(ctx, mealID); ok {
			return cached, nil
		}
	}

	if _, err := s.DB.SlotByID(ctx, mealID); err != nil {
		return nil, notFound(err, "meal slot", mealID)
	}

	stats := &MealStats{MealID: mealID}

	var err error
	stats.Breakdown.Volunteers.Total, stats.Breakdown.Volunteers.Validated, err = s.DB.CountVolunteerEntitlements(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to count volunteer entitlements: %w", err)
	}
	stats.Breakdown.Artists.Total, stats.Breakdown.Artists.Validated, err = s.DB.CountArtistEntitlements(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to count artist entitlements: %w", err)
	}

	tierIDs, err := s.DB.TicketItemIDsByTier(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tier-granted tickets: %w", err)
	}
	optionIDs, err := s.DB.TicketItemIDsByOption(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to load option-granted tickets: %w", err)
	}
	consumedIDs, err := s.DB.ConsumedTicketItemIDs(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to load consumed grants: %w", err)
	}

	// Union of the two grant paths; a ticket reachable both ways counts once.
	union := make(map[string]bool, len(tierIDs)+len(optionIDs))
	for _, id := range tierIDs {
		union[id] = true
	}
	for _, id := range optionIDs {
		union[id] = true
	}
	stats.Breakdown.Participants.Total = len(union)
	for _, id := range consumedIDs {
		if union[id] {
			stats.Breakdown.Participants.Validated++
		}
	}

	stats.Total = stats.Breakdown.Volunteers.Total + stats.Breakdown.Artists.Total + stats.Breakdown.Participants.Total
	stats.Validated = stats.Breakdown.Volunteers.Validated + stats.Breakdown.Artists.Validated + stats.Breakdown.Participants.Validated
	if stats.Total > 0 {
		stats.Percentage = int(math.Round(float64(stats.Validated) / float64(stats.Total) * 100))
	}

	if s.Cache != nil {
		if err := s.Cache.SetMealStats(ctx, mealID, stats); err != nil {
			s.logWarn("CACHE", fmt.Sprintf("failed to cache stats for meal %s: %v", mealID, err))
		}
	}
	return stats, nil
}
