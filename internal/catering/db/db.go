package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-catering/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) GetVolunteerByID(ctx context.Context, id string) (*models.VolunteerProfile, error) {
	var volunteer models.VolunteerProfile
	err := d.Bun.NewSelect().
		Model(&volunteer).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &volunteer, nil
}

func (d *DB) GetArtistByID(ctx context.Context, id string) (*models.ArtistProfile, error) {
	var artist models.ArtistProfile
	err := d.Bun.NewSelect().
		Model(&artist).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &artist, nil
}

func (d *DB) GetOrderItemByID(ctx context.Context, id string) (*models.OrderItem, error) {
	var item models.OrderItem
	err := d.Bun.NewSelect().
		Model(&item).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
