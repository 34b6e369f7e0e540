package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TierMealGrant maps a ticket tier to a meal slot it unlocks. Staff
// configuration, read-only here.
type TierMealGrant struct {
	bun.BaseModel `bun:"table:tier_meal_grants,alias:tier_meal_grant"`

	TierID string `bun:"tier_id,pk" json:"tier_id"`
	MealID string `bun:"meal_id,pk" json:"meal_id"`
}

// OptionMealGrant maps a purchasable option to a meal slot it unlocks.
type OptionMealGrant struct {
	bun.BaseModel `bun:"table:option_meal_grants,alias:option_meal_grant"`

	OptionID string `bun:"option_id,pk" json:"option_id"`
	MealID   string `bun:"meal_id,pk" json:"meal_id"`
}

// MealGrant is the lazily materialized consumption record for a ticket
// holder. Unlike selections, no synchronizer maintains these rows: the first
// successful validation creates the row already consumed.
type MealGrant struct {
	bun.BaseModel `bun:"table:meal_grants,alias:meal_grant"`

	ID          string     `bun:"id,pk" json:"id"`
	OrderItemID string     `bun:"order_item_id,notnull,unique:item_meal" json:"order_item_id"`
	MealID      string     `bun:"meal_id,notnull,unique:item_meal" json:"meal_id"`
	ConsumedAt  *time.Time `bun:"consumed_at" json:"consumed_at,omitempty"`
}
