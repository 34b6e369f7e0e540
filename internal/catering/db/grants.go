package db

import (
	"context"
	"time"

	"ms-catering/internal/models"
)

func (d *DB) TierGrantExists(ctx context.Context, tierID, mealID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.TierMealGrant)(nil)).
		Where("tier_id = ?", tierID).
		Where("meal_id = ?", mealID).
		Exists(ctx)
}

// OptionGrantExistsForItem reports whether any option purchased with the
// order item unlocks the meal.
func (d *DB) OptionGrantExistsForItem(ctx context.Context, orderItemID, mealID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.OptionMealGrant)(nil)).
		Join("JOIN order_item_options AS oio ON oio.option_id = option_meal_grant.option_id").
		Where("oio.order_item_id = ?", orderItemID).
		Where("option_meal_grant.meal_id = ?", mealID).
		Exists(ctx)
}

func (d *DB) GrantByItemAndMeal(ctx context.Context, orderItemID, mealID string) (*models.MealGrant, error) {
	var grant models.MealGrant
	err := d.Bun.NewSelect().
		Model(&grant).
		Where("order_item_id = ?", orderItemID).
		Where("meal_id = ?", mealID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// InsertGrantConsumed lazily materializes a grant row that is born consumed.
// Returns false when a concurrent validation created the row first, which
// callers must treat as AlreadyValidated.
func (d *DB) InsertGrantConsumed(ctx context.Context, grant models.MealGrant) (bool, error) {
	res, err := d.Bun.NewInsert().
		Model(&grant).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (d *DB) ConsumeGrant(ctx context.Context, orderItemID, mealID string, at time.Time) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.MealGrant)(nil)).
		Set("consumed_at = ?", at).
		Where("order_item_id = ?", orderItemID).
		Where("meal_id = ?", mealID).
		Where("consumed_at IS NULL").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) UnconsumeGrant(ctx context.Context, orderItemID, mealID string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.MealGrant)(nil)).
		Set("consumed_at = NULL").
		Where("order_item_id = ?", orderItemID).
		Where("meal_id = ?", mealID).
		Where("consumed_at IS NOT NULL").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
