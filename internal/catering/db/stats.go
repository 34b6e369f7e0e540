package db

import (
	"context"

	"ms-catering/internal/models"
)

// CountVolunteerEntitlements returns total and validated accepted selections
// for a meal, restricted to volunteers in ACCEPTED status.
func (d *DB) CountVolunteerEntitlements(ctx context.Context, mealID string) (int, int, error) {
	var counts struct {
		Total     int `bun:"total"`
		Validated int `bun:"validated"`
	}
	err := d.Bun.NewRaw(`
		SELECT
			COUNT(*) AS total,
			COUNT(s.consumed_at) AS validated
		FROM volunteer_selections s
		JOIN volunteer_profiles v ON v.id = s.volunteer_id
		WHERE s.meal_id = ? AND s.accepted = ? AND v.status = ?`,
		mealID, true, models.ParticipantAccepted).
		Scan(ctx, &counts)
	if err != nil {
		return 0, 0, err
	}
	return counts.Total, counts.Validated, nil
}

func (d *DB) CountArtistEntitlements(ctx context.Context, mealID string) (int, int, error) {
	var counts struct {
		Total     int `bun:"total"`
		Validated int `bun:"validated"`
	}
	err := d.Bun.NewRaw(`
		SELECT
			COUNT(*) AS total,
			COUNT(s.consumed_at) AS validated
		FROM artist_selections s
		JOIN artist_profiles a ON a.id = s.artist_id
		WHERE s.meal_id = ? AND s.accepted = ? AND a.status = ?`,
		mealID, true, models.ParticipantAccepted).
		Scan(ctx, &counts)
	if err != nil {
		return 0, 0, err
	}
	return counts.Total, counts.Validated, nil
}

// TicketItemIDsByTier returns the order items whose tier unlocks the meal.
// Only VALID/PROCESSED items on PROCESSED orders count.
func (d *DB) TicketItemIDsByTier(ctx context.Context, mealID string) ([]string, error) {
	var ids []string
	err := d.Bun.NewRaw(`
		SELECT oi.id
		FROM order_items oi
		JOIN tier_meal_grants tg ON tg.tier_id = oi.tier_id
		JOIN orders o ON o.id = oi.order_id
		WHERE tg.meal_id = ?
		  AND oi.state IN (?, ?)
		  AND o.status = ?`,
		mealID, models.ItemValid, models.ItemProcessed, models.OrderProcessed).
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// TicketItemIDsByOption returns the order items reachable through a purchased
// option that unlocks the meal, under the same state filters.
func (d *DB) TicketItemIDsByOption(ctx context.Context, mealID string) ([]string, error) {
	var ids []string
	err := d.Bun.NewRaw(`
		SELECT DISTINCT oi.id
		FROM order_items oi
		JOIN order_item_options oio ON oio.order_item_id = oi.id
		JOIN option_meal_grants og ON og.option_id = oio.option_id
		JOIN orders o ON o.id = oi.order_id
		WHERE og.meal_id = ?
		  AND oi.state IN (?, ?)
		  AND o.status = ?`,
		mealID, models.ItemValid, models.ItemProcessed, models.OrderProcessed).
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (d *DB) ConsumedTicketItemIDs(ctx context.Context, mealID string) ([]string, error) {
	var ids []string
	err := d.Bun.NewRaw(`
		SELECT order_item_id
		FROM meal_grants
		WHERE meal_id = ? AND consumed_at IS NOT NULL`,
		mealID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// TierTicketItemsByMeal returns full order items for the catering report,
// reached through the tier path only. The report deliberately skips the
// option path, unlike the stats aggregation.
func (d *DB) TierTicketItemsByMeal(ctx context.Context, mealID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := d.Bun.NewSelect().
		Model(&items).
		Join("JOIN tier_meal_grants AS tg ON tg.tier_id = order_item.tier_id").
		Join("JOIN orders AS o ON o.id = order_item.order_id").
		Where("tg.meal_id = ?", mealID).
		Where("order_item.state IN (?, ?)", models.ItemValid, models.ItemProcessed).
		Where("o.status = ?", models.OrderProcessed).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}
