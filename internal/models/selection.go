package models

import (
	"time"

	"github.com/uptrace/bun"
)

// VolunteerSelection is the eagerly synchronized entitlement of one volunteer
// to one meal slot. Created accepted by default; ConsumedAt transitions
// null → non-null exactly once through the validator.
type VolunteerSelection struct {
	bun.BaseModel `bun:"table:volunteer_selections,alias:volunteer_selection"`

	ID          string     `bun:"id,pk" json:"id"`
	VolunteerID string     `bun:"volunteer_id,notnull,unique:volunteer_meal" json:"volunteer_id"`
	MealID      string     `bun:"meal_id,notnull,unique:volunteer_meal" json:"meal_id"`
	Accepted    bool       `bun:"accepted,notnull" json:"accepted"`
	ConsumedAt  *time.Time `bun:"consumed_at" json:"consumed_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull" json:"created_at"`
}

// ArtistSelection is the artist variant of the selection record.
type ArtistSelection struct {
	bun.BaseModel `bun:"table:artist_selections,alias:artist_selection"`

	ID         string     `bun:"id,pk" json:"id"`
	ArtistID   string     `bun:"artist_id,notnull,unique:artist_meal" json:"artist_id"`
	MealID     string     `bun:"meal_id,notnull,unique:artist_meal" json:"meal_id"`
	Accepted   bool       `bun:"accepted,notnull" json:"accepted"`
	ConsumedAt *time.Time `bun:"consumed_at" json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `bun:"created_at,notnull" json:"created_at"`
}
