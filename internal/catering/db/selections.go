package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-catering/internal/models"
)

// ---------------- volunteer selections ----------------

func (d *DB) VolunteerSelectionsByVolunteer(ctx context.Context, volunteerID string) ([]models.VolunteerSelection, error) {
	var selections []models.VolunteerSelection
	err := d.Bun.NewSelect().
		Model(&selections).
		Where("volunteer_id = ?", volunteerID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return selections, nil
}

// InsertVolunteerSelections bulk-creates selection rows. Duplicate
// (volunteer_id, meal_id) pairs from a concurrent synchronizer run are
// dropped silently; the caller re-reads afterwards.
func (d *DB) InsertVolunteerSelections(ctx context.Context, selections []models.VolunteerSelection) error {
	if len(selections) == 0 {
		return nil
	}
	_, err := d.Bun.NewInsert().
		Model(&selections).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	return err
}

func (d *DB) DeleteVolunteerSelections(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := d.Bun.NewDelete().
		Model((*models.VolunteerSelection)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return err
}

func (d *DB) VolunteerSelectionByID(ctx context.Context, id string) (*models.VolunteerSelection, error) {
	var selection models.VolunteerSelection
	err := d.Bun.NewSelect().
		Model(&selection).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &selection, nil
}

// ConsumeVolunteerSelection performs the at-most-once consumption transition
// as a single conditional update. Zero affected rows means the selection was
// already consumed.
func (d *DB) ConsumeVolunteerSelection(ctx context.Context, id string, at time.Time) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.VolunteerSelection)(nil)).
		Set("consumed_at = ?", at).
		Where("id = ?", id).
		Where("consumed_at IS NULL").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) UnconsumeVolunteerSelection(ctx context.Context, id string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.VolunteerSelection)(nil)).
		Set("consumed_at = NULL").
		Where("id = ?", id).
		Where("consumed_at IS NOT NULL").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) SetVolunteerSelectionAccepted(ctx context.Context, id string, accepted bool) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.VolunteerSelection)(nil)).
		Set("accepted = ?", accepted).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) AcceptedVolunteerSelectionsByMeal(ctx context.Context, mealID string) ([]models.VolunteerSelection, error) {
	var selections []models.VolunteerSelection
	err := d.Bun.NewSelect().
		Model(&selections).
		Where("meal_id = ?", mealID).
		Where("accepted = ?", true).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return selections, nil
}

func (d *DB) VolunteersByIDs(ctx context.Context, ids []string) ([]models.VolunteerProfile, error) {
	if len(ids) == 0 {
		return []models.VolunteerProfile{}, nil
	}
	var volunteers []models.VolunteerProfile
	err := d.Bun.NewSelect().
		Model(&volunteers).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return volunteers, nil
}

// ---------------- artist selections ----------------

func (d *DB) ArtistSelectionsByArtist(ctx context.Context, artistID string) ([]models.ArtistSelection, error) {
	var selections []models.ArtistSelection
	err := d.Bun.NewSelect().
		Model(&selections).
		Where("artist_id = ?", artistID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return selections, nil
}

func (d *DB) InsertArtistSelections(ctx context.Context, selections []models.ArtistSelection) error {
	if len(selections) == 0 {
		return nil
	}
	_, err := d.Bun.NewInsert().
		Model(&selections).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	return err
}

func (d *DB) DeleteArtistSelections(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := d.Bun.NewDelete().
		Model((*models.ArtistSelection)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return err
}

func (d *DB) ArtistSelectionByID(ctx context.Context, id string) (*models.ArtistSelection, error) {
	var selection models.ArtistSelection
	err := d.Bun.NewSelect().
		Model(&selection).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &selection, nil
}

func (d *DB) ConsumeArtistSelection(ctx context.Context, id string, at time.Time) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.ArtistSelection)(nil)).
		Set("consumed_at = ?", at).
		Where("id = ?", id).
		Where("consumed_at IS NULL").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) UnconsumeArtistSelection(ctx context.Context, id string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.ArtistSelection)(nil)).
		Set("consumed_at = NULL").
		Where("id = ?", id).
		Where("consumed_at IS NOT NULL").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) SetArtistSelectionAccepted(ctx context.Context, id string, accepted bool) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.ArtistSelection)(nil)).
		Set("accepted = ?", accepted).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) AcceptedArtistSelectionsByMeal(ctx context.Context, mealID string) ([]models.ArtistSelection, error) {
	var selections []models.ArtistSelection
	err := d.Bun.NewSelect().
		Model(&selections).
		Where("meal_id = ?", mealID).
		Where("accepted = ?", true).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return selections, nil
}

func (d *DB) ArtistsByIDs(ctx context.Context, ids []string) ([]models.ArtistProfile, error) {
	if len(ids) == 0 {
		return []models.ArtistProfile{}, nil
	}
	var artists []models.ArtistProfile
	err := d.Bun.NewSelect().
		Model(&artists).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return artists, nil
}
