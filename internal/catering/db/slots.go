package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"

	"ms-catering/internal/models"
	"ms-catering/internal/schedule"
)

func (d *DB) SlotsByEvent(ctx context.Context, eventID string) ([]models.MealSlot, error) {
	var slots []models.MealSlot
	err := d.Bun.NewSelect().
		Model(&slots).
		Where("event_id = ?", eventID).
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (d *DB) EnabledSlotsByEventAndDate(ctx context.Context, eventID string, date time.Time) ([]models.MealSlot, error) {
	var slots []models.MealSlot
	err := d.Bun.NewSelect().
		Model(&slots).
		Where("event_id = ?", eventID).
		Where("date = ?", schedule.DateOnly(date)).
		Where("enabled = ?", true).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (d *DB) SlotByID(ctx context.Context, id string) (*models.MealSlot, error) {
	var slot models.MealSlot
	err := d.Bun.NewSelect().
		Model(&slot).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (d *DB) InsertSlots(ctx context.Context, slots []models.MealSlot) error {
	if len(slots) == 0 {
		return nil
	}
	_, err := d.Bun.NewInsert().
		Model(&slots).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	return err
}

// UpdateSlotSettings persists the staff-editable columns only. Reconciler
// decisions never pass through here.
func (d *DB) UpdateSlotSettings(ctx context.Context, slot *models.MealSlot) error {
	_, err := d.Bun.NewUpdate().
		Model(slot).
		Column("enabled", "phases").
		Where("id = ?", slot.ID).
		Exec(ctx)
	return err
}

// DeleteSlots removes slots that left the expected period together with every
// selection and grant referencing them, in one transaction.
func (d *DB) DeleteSlots(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.VolunteerSelection)(nil)).
			Where("meal_id IN (?)", bun.In(ids)).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*models.ArtistSelection)(nil)).
			Where("meal_id IN (?)", bun.In(ids)).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*models.MealGrant)(nil)).
			Where("meal_id IN (?)", bun.In(ids)).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*models.MealSlot)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
		return err
	})
}
