package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Order statuses as published by the ticketing service. Only PROCESSED
// orders grant meal access.
const (
	OrderProcessed = "PROCESSED"
	OrderPending   = "PENDING"
	OrderRefunded  = "REFUNDED"
)

// Order-item states. VALID and PROCESSED items count; REFUNDED items never
// grant access even if previously consumed.
const (
	ItemValid     = "VALID"
	ItemProcessed = "PROCESSED"
	ItemRefunded  = "REFUNDED"
)

type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID        string    `bun:"id,pk" json:"id"`
	EventID   string    `bun:"event_id,notnull" json:"event_id"`
	UserID    string    `bun:"user_id" json:"user_id"`
	Status    string    `bun:"status,notnull" json:"status"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

// OrderItem is one purchased ticket: a tier reference plus zero or more
// purchased options, carried with the holder's identity and dietary metadata
// for the kitchen report. Meal eligibility for ticket holders is derived on
// demand from the tier/option grant tables, never synchronized.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:order_item"`

	ID              string `bun:"id,pk" json:"id"`
	OrderID         string `bun:"order_id,notnull" json:"order_id"`
	TierID          string `bun:"tier_id,notnull" json:"tier_id"`
	State           string `bun:"state,notnull" json:"state"`
	HolderFirstName string `bun:"holder_first_name" json:"holder_first_name"`
	HolderLastName  string `bun:"holder_last_name" json:"holder_last_name"`
	Diet            string `bun:"diet" json:"diet"`
	Allergies       string `bun:"allergies" json:"allergies"`
	AllergySeverity string `bun:"allergy_severity" json:"allergy_severity"`
}

// OrderItemOption links a purchased option to its order item.
type OrderItemOption struct {
	bun.BaseModel `bun:"table:order_item_options,alias:oio"`

	OrderItemID string `bun:"order_item_id,pk" json:"order_item_id"`
	OptionID    string `bun:"option_id,pk" json:"option_id"`
}
